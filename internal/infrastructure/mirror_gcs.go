package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

const (
	mirrorUploadTimeout = 2 * time.Minute
	mirrorDeleteTimeout = 30 * time.Second
)

// GCSMirror copies stored assets into a Google Cloud Storage bucket and
// removes them again when they leave the local store.
type GCSMirror struct {
	client *storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewGCSMirror creates a mirror for the configured bucket
func NewGCSMirror(ctx context.Context, config *domain.MirrorConfig, logger *zap.Logger) (*GCSMirror, error) {
	if config == nil || config.Bucket == "" {
		return nil, fmt.Errorf("mirror bucket not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Info("Asset mirror initialized",
		zap.String("bucket", config.Bucket),
		zap.String("prefix", config.Prefix))

	return &GCSMirror{
		client: client,
		bucket: config.Bucket,
		prefix: config.Prefix,
		logger: logger,
	}, nil
}

// OnStored uploads the stored file
func (m *GCSMirror) OnStored(ctx context.Context, event domain.AssetEvent) error {
	f, err := os.Open(event.Path)
	if err != nil {
		return fmt.Errorf("failed to open stored asset: %w", err)
	}
	defer f.Close()

	key := objectKey(m.prefix, event.RelativePath)
	ctx, cancel := context.WithTimeout(ctx, mirrorUploadTimeout)
	defer cancel()

	w := m.client.Bucket(m.bucket).Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}

	m.logger.Debug("Asset mirrored",
		zap.String("bucket", m.bucket),
		zap.String("key", key))
	return nil
}

// OnRemoved deletes the mirrored object, or every object below the
// mirrored folder for a delete.
func (m *GCSMirror) OnRemoved(ctx context.Context, event domain.AssetEvent) error {
	key := objectKey(m.prefix, event.RelativePath)
	if event.Type == domain.EventDeleted {
		return m.deletePrefix(ctx, key+"/")
	}
	return m.deleteObject(ctx, key)
}

func (m *GCSMirror) deleteObject(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, mirrorDeleteTimeout)
	defer cancel()

	err := m.client.Bucket(m.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, m.bucket, err)
	}
	return nil
}

func (m *GCSMirror) deletePrefix(ctx context.Context, prefix string) error {
	it := m.client.Bucket(m.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var failed int
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list GCS objects under %q: %w", prefix, err)
		}
		if err := m.deleteObject(ctx, attrs.Name); err != nil {
			m.logger.Warn("Failed to delete mirrored object", zap.String("key", attrs.Name), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to delete %d mirrored objects under %q", failed, prefix)
	}
	return nil
}

// Close closes the storage client
func (m *GCSMirror) Close() error {
	return m.client.Close()
}

// objectKey joins the bucket prefix and the store-relative path
func objectKey(prefix, relPath string) string {
	prefix = strings.Trim(prefix, "/")
	relPath = strings.TrimLeft(relPath, "/")
	if prefix == "" {
		return relPath
	}
	return prefix + "/" + relPath
}
