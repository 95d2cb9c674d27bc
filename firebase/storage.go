package firebase

import (
	"context"
	"io"
)

// StorageClient abstracts Firebase Storage operations for dependency injection and testing.
type StorageClient interface {
	UploadTenantLogo(ctx context.Context, r io.Reader, slug, filename, contentType string) (string, error)
	ImportTenantLogo(ctx context.Context, imageURL, slug string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}
