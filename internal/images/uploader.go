// Package images resolves item image references to durable hosted URLs.
package images

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

//go:generate mockgen -source=uploader.go -destination=mock_uploader.go -package=images

// Uploader sends an image payload to the asset host and returns a durable URL.
// The source may be a raw base64 payload, a local path, or an io.Reader.
type Uploader interface {
	Upload(ctx context.Context, source interface{}, folder string) (string, error)
}

// Cloudinary implements Uploader on the Cloudinary upload API.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a cloudinary:// credentials URL.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, source interface{}, folder string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, source, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", err
	}
	// The SDK reports some upload rejections in the body instead of err.
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}

// IsRemoteURL reports whether ref already carries a resolved URL scheme and
// therefore needs no upload.
func IsRemoteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
