package utils

import (
	"fmt"
	"net/url"
	"strings"
)

const storageHost = "storage.googleapis.com"

// TenantLogoObjectPath returns the bucket object behind a stored logo URL.
// Only objects under tenants/<slug>/ are returned, so replacing one tenant's
// logo never removes a file that belongs to another tenant or to no tenant.
func TenantLogoObjectPath(logoURL, slug string) (string, error) {
	u, err := url.Parse(logoURL)
	if err != nil || u.Scheme != "https" || u.Host != storageHost {
		return "", fmt.Errorf("not a storage URL: %q", logoURL)
	}

	// path is /<bucket>/<object>
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("storage URL has no object: %q", logoURL)
	}

	object := parts[1]
	prefix := "tenants/" + slug + "/"
	if slug == "" || !strings.HasPrefix(object, prefix) || len(object) == len(prefix) {
		return "", fmt.Errorf("object %q is not a logo of tenant %q", object, slug)
	}
	if strings.Contains(object, "..") {
		return "", fmt.Errorf("object %q escapes the tenant folder", object)
	}
	return object, nil
}
