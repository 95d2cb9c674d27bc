package firebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// MaxImportSize caps logos fetched from a URL.
const MaxImportSize = 2 << 20

const maxImportRedirects = 5

var errImportTooLarge = errors.New("image is larger than 2MB")

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	// Replace path separators and other dangerous characters
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	// Limit length to 100 characters
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	// Ensure it's not empty
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

func logoObjectPath(slug, filename string, now time.Time) string {
	return fmt.Sprintf("tenants/%s/%d_%s", sanitizeFilename(slug), now.Unix(), sanitizeFilename(filename))
}

// isPrivateIP checks whether an IP address is a private/reserved address.
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

var privateRanges = []*net.IPNet{
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
	parseCIDR("127.0.0.0/8"),
	parseCIDR("169.254.0.0/16"),
	parseCIDR("0.0.0.0/8"),
	parseCIDR("::1/128"),
	parseCIDR("fc00::/7"),
	parseCIDR("fe80::/10"),
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}

// validateExternalURL validates that a URL is safe to fetch (prevents SSRF).
func validateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %v", host, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}

	return nil
}

// redirectPolicy re-validates every redirect hop so a public URL cannot
// bounce the importer onto an internal address.
func redirectPolicy(validate func(string) error) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxImportRedirects {
			return fmt.Errorf("stopped after %d redirects", maxImportRedirects)
		}
		if err := validate(req.URL.String()); err != nil {
			return fmt.Errorf("redirect to %s rejected: %v", req.URL.Redacted(), err)
		}
		return nil
	}
}

// safeDialControl refuses connections to private addresses at dial time,
// after DNS resolution, which also covers rebinding between check and fetch.
func safeDialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("dial to non-IP address %q", host)
	}
	if isPrivateIP(ip) {
		return fmt.Errorf("dial to private IP address %s is not allowed", ip)
	}
	return nil
}

func newImportClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: safeDialControl}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{
		Timeout:       30 * time.Second,
		Transport:     transport,
		CheckRedirect: redirectPolicy(validateExternalURL),
	}
}

// downloadImage fetches an image body, failing rather than truncating when it
// exceeds MaxImportSize.
func downloadImage(ctx context.Context, client *http.Client, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image from %s: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("URL %s returned non-image content-type: %q (expected image/*)", imageURL, contentType)
	}
	if resp.ContentLength > MaxImportSize {
		return nil, "", errImportTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImportSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image from %s: %v", imageURL, err)
	}
	if len(data) > MaxImportSize {
		return nil, "", errImportTooLarge
	}
	return data, contentType, nil
}

// Init creates the Firebase app from GOOGLE_APPLICATION_CREDENTIALS, which may
// hold either inline JSON or a file path.
func Init(ctx context.Context, logger *zap.Logger) (*firebase.App, error) {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	var opts []option.ClientOption

	if credJSON != "" {
		if strings.HasPrefix(credJSON, "{") {
			logger.Info("using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			logger.Info("using Firebase credentials from file", zap.String("path", credJSON))
			opts = append(opts, option.WithCredentialsFile(credJSON))
		}
	} else {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	logger.Info("Firebase initialized")
	return app, nil
}

// FirebaseStorageClient stores tenant assets in one Firebase Storage bucket.
type FirebaseStorageClient struct {
	app        *firebase.App
	bucketName string
	logger     *zap.Logger
	httpClient *http.Client
}

func NewStorageClient(app *firebase.App, bucketName string, logger *zap.Logger) (*FirebaseStorageClient, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}
	return &FirebaseStorageClient{
		app:        app,
		bucketName: bucketName,
		logger:     logger,
		httpClient: newImportClient(),
	}, nil
}

func (f *FirebaseStorageClient) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	client, err := f.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(f.bucketName)
}

func (f *FirebaseStorageClient) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", f.bucketName, objectPath)
}

func (f *FirebaseStorageClient) upload(ctx context.Context, r io.Reader, objectPath, contentType string) (string, error) {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %v", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		f.logger.Warn("failed to set public ACL", zap.String("object", objectPath), zap.Error(err))
	}

	return f.publicURL(objectPath), nil
}

func (f *FirebaseStorageClient) UploadTenantLogo(ctx context.Context, r io.Reader, slug, filename, contentType string) (string, error) {
	return f.upload(ctx, r, logoObjectPath(slug, filename, time.Now()), contentType)
}

// ImportTenantLogo downloads an image from a public URL and stores it as the
// tenant's logo.
func (f *FirebaseStorageClient) ImportTenantLogo(ctx context.Context, imageURL, slug string) (string, error) {
	// SSRF prevention: validate the URL before fetching
	if err := validateExternalURL(imageURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %v", imageURL, err)
	}

	data, contentType, err := downloadImage(ctx, f.httpClient, imageURL)
	if err != nil {
		return "", err
	}

	// Use a random suffix so concurrent imports never overwrite each other
	objectPath := logoObjectPath(slug, "import_"+uuid.New().String()[:8], time.Now())
	return f.upload(ctx, bytes.NewReader(data), objectPath, contentType)
}

// DeleteFile deletes a file from Firebase Storage given its object path
func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return err
	}

	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}

	f.logger.Info("deleted file", zap.String("object", objectPath), zap.String("bucket", f.bucketName))
	return nil
}
