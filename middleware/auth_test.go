package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-unit-tests"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(adminHash string) *gin.Engine {
	r := gin.New()

	protected := r.Group("/api")
	protected.Use(SessionMiddleware(testSecret))
	protected.GET("/test", func(c *gin.Context) {
		userID, email, _ := SessionUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String(), "email": email})
	})

	optional := r.Group("/open")
	optional.Use(OptionalSessionMiddleware(testSecret))
	optional.GET("/test", func(c *gin.Context) {
		_, _, ok := SessionUser(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok})
	})

	admin := r.Group("/api/admin")
	admin.Use(AdminKeyMiddleware(adminHash))
	admin.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "admin access granted"})
	})

	return r
}

func signSession(t *testing.T, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	token, err := utils.GenerateSessionToken(testSecret, userID, "member@test.com", ttl)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestSessionMiddlewareBearerToken(t *testing.T) {
	r := setupTestRouter("")
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, userID, time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), userID.String()) {
		t.Errorf("expected user id in response, got %s", w.Body.String())
	}
}

func TestSessionMiddlewareCookie(t *testing.T) {
	r := setupTestRouter("")
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signSession(t, userID, time.Hour)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "member@test.com") {
		t.Errorf("expected email in response, got %s", w.Body.String())
	}
}

func TestSessionMiddlewareMissingSession(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestSessionMiddlewareMalformedToken(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestSessionMiddlewareExpiredToken(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, uuid.New(), -time.Minute))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for expired token, got %d", w.Code)
	}
}

func TestSessionMiddlewareInvalidFormatNoBearer(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Token "+signSession(t, uuid.New(), time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for non-Bearer format, got %d", w.Code)
	}
}

func TestSessionMiddlewareCookieWithBasicAuthHeader(t *testing.T) {
	r := setupTestRouter("")
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.SetBasicAuth("proxy", "password")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signSession(t, userID, time.Hour)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected cookie session despite Basic auth header, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), userID.String()) {
		t.Errorf("expected user id in response, got %s", w.Body.String())
	}
}

func TestSessionMiddlewareWrongSecret(t *testing.T) {
	token, err := utils.GenerateSessionToken("another-project-secret", uuid.New(), "member@test.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for token signed with another secret, got %d", w.Code)
	}
}

func TestOptionalSessionMiddleware(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/open/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"signed_in":false`) {
		t.Fatalf("expected anonymous pass-through, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/open/test", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, uuid.New(), time.Hour))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"signed_in":true`) {
		t.Fatalf("expected signed-in pass-through, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminKeyMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-admin"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	r := setupTestRouter(string(hash))

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "s3cret-admin", http.StatusOK},
		{"wrong key", "guess", http.StatusForbidden},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/test", nil)
			if tt.key != "" {
				req.Header.Set("X-Admin-Key", tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAdminKeyMiddlewareDisabledWithoutHash(t *testing.T) {
	r := setupTestRouter("")

	req := httptest.NewRequest("GET", "/api/admin/test", nil)
	req.Header.Set("X-Admin-Key", "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}
