// Package artifact publishes the files produced by mosaic builds (the
// composed GeoTIFF, the VRT descriptors, rendered PNGs) to a blob store.
//
// Two drivers exist: "fs" copies files under a local root directory and
// "s3" uploads them to an S3-compatible bucket with aws-sdk-go-v2.
// Publishing an existing key replaces it.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Driver identifies a blob store backend.
type Driver string

const (
	// DriverFilesystem stores artifacts below a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 stores artifacts in an S3-compatible bucket.
	DriverS3 Driver = "s3"
)

// Info describes a stored artifact.
type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Location    string `json:"location"`
}

// PutOptions configures an artifact write.
type PutOptions struct {
	ContentType string
}

// Store is a blob store for artifacts.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Head(ctx context.Context, key string) (Info, error)
}

// Config selects and configures a Store.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open returns the store selected by cfg.Driver. An empty driver selects
// the filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown artifact driver %q", cfg.Driver)
	}
}

// Publish uploads the file at localPath under prefix/<file name>.
//
// Parameters:
//   - store: Destination store.
//   - localPath: File to upload, e.g. <outputDir>/dataset.tif.
//   - prefix: Key prefix; may be empty.
//
// Returns:
//   - Info: Metadata of the stored artifact.
//   - error: Non-nil if the file cannot be read or the upload fails.
func Publish(ctx context.Context, store Store, localPath, prefix string) (Info, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	key := filepath.Base(localPath)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = path.Join(prefix, key)
	}

	info, err := store.Put(ctx, key, f, PutOptions{ContentType: ContentType(localPath)})
	if err != nil {
		return Info{}, fmt.Errorf("failed to publish %s: %w", key, err)
	}
	return info, nil
}

// ContentType guesses the media type of an artifact from its extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return "image/tiff"
	case ".vrt":
		return "application/xml"
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
