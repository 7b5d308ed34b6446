package app

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// AssetManager materializes assets onto disk and removes them again.
// It holds no mutable state beyond its compiled configuration, so calls for
// different assets may run concurrently. Calls for the same asset must be
// serialized by the caller.
type AssetManager struct {
	store    domain.CompiledStore
	resolver *PathResolver
	locales  *LocaleMapper
	fetcher  domain.Fetcher
	fs       domain.Filesystem
	observer domain.AssetObserver
	logger   *zap.Logger
}

// NewAssetManager compiles the store configuration once and wires the collaborators.
// observer may be nil.
func NewAssetManager(
	config domain.AssetStoreConfig,
	fetcher domain.Fetcher,
	fs domain.Filesystem,
	observer domain.AssetObserver,
	logger *zap.Logger,
) (*AssetManager, error) {
	store, err := config.Compile()
	if err != nil {
		return nil, fmt.Errorf("invalid asset store configuration: %w", err)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("asset manager requires a fetcher")
	}
	if fs == nil {
		return nil, fmt.Errorf("asset manager requires a filesystem")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AssetManager{
		store:    store,
		resolver: NewPathResolver(store),
		locales:  NewLocaleMapper(store),
		fetcher:  fetcher,
		fs:       fs,
		observer: observer,
		logger:   logger,
	}, nil
}

// Store returns the compiled configuration
func (m *AssetManager) Store() domain.CompiledStore {
	return m.store
}

// Resolve computes the on-disk location of an asset without touching the network or disk.
func (m *AssetManager) Resolve(asset domain.Asset) (Resolution, string, error) {
	res, err := m.resolver.Resolve(asset)
	if err != nil {
		return Resolution{}, "", err
	}
	return res, m.absPath(res), nil
}

// storedFile describes where a download landed
type storedFile struct {
	Path    string
	Bytes   int64
	Skipped bool
}

// Download fetches the asset and writes it below the base directory.
// The returned asset carries the CDN metadata and its internal URL.
func (m *AssetManager) Download(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	out, _, err := m.download(ctx, asset)
	return out, err
}

func (m *AssetManager) download(ctx context.Context, asset domain.Asset) (*domain.Asset, storedFile, error) {
	m.logger.Debug("Asset download called",
		zap.String("uid", asset.UID),
		zap.String("locale", asset.Locale),
		zap.String("url", asset.URL))

	if err := asset.ValidateForDownload(); err != nil {
		return nil, storedFile{}, err
	}

	res, err := m.resolver.Resolve(asset)
	if err != nil {
		return nil, storedFile{}, err
	}
	filePath := m.absPath(res)

	// A download id marks assets whose response may rename the file, so only
	// assets without one are settled by the file already on disk
	if m.store.SkipExisting && asset.DownloadID == "" {
		exists, err := m.fs.Exists(filePath)
		if err != nil {
			return nil, storedFile{}, &domain.FilesystemError{Op: "stat", Path: filePath, Err: err}
		}
		if exists {
			return m.skipDownload(ctx, res, filePath), storedFile{Path: filePath, Skipped: true}, nil
		}
	}

	resp, err := m.fetcher.Fetch(ctx, asset.URL)
	if err != nil {
		return nil, storedFile{}, &domain.RemoteFetchError{AssetUID: asset.UID, URL: asset.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, storedFile{}, &domain.RemoteFetchError{AssetUID: asset.UID, URL: asset.URL, StatusCode: resp.StatusCode}
	}

	if name := filenameFromDisposition(resp.Header.Get("Content-Disposition")); name != "" && name != asset.Filename {
		m.logger.Debug("Using filename from content-disposition",
			zap.String("uid", asset.UID),
			zap.String("filename", name))
		renamed := asset.Clone()
		renamed.Filename = name
		if res, err = m.resolver.Resolve(renamed); err != nil {
			return nil, storedFile{}, err
		}
		filePath = m.absPath(res)
	}

	folderPath := filepath.Dir(filePath)
	exists, err := m.fs.Exists(folderPath)
	if err != nil {
		return nil, storedFile{}, &domain.FilesystemError{Op: "stat", Path: folderPath, Err: err}
	}
	if !exists {
		if err := m.fs.MkdirAll(folderPath); err != nil {
			return nil, storedFile{}, &domain.FilesystemError{Op: "mkdir", Path: folderPath, Err: err}
		}
	}

	if m.store.SkipExisting {
		exists, err := m.fs.Exists(filePath)
		if err != nil {
			return nil, storedFile{}, &domain.FilesystemError{Op: "stat", Path: filePath, Err: err}
		}
		if exists {
			return m.skipDownload(ctx, res, filePath), storedFile{Path: filePath, Skipped: true}, nil
		}
	}

	written, err := m.fs.WriteAtomic(filePath, resp.Body)
	if err != nil {
		return nil, storedFile{}, &domain.FilesystemError{Op: "write", Path: filePath, Err: err}
	}

	out := res.Asset
	out.InternalURL = m.internalURL(res)

	m.logger.Info("Asset downloaded",
		zap.String("uid", out.UID),
		zap.String("locale", out.Locale),
		zap.String("path", filePath),
		zap.String("internal_url", out.InternalURL),
		zap.Int64("bytes", written))

	m.notifyStored(ctx, domain.AssetEvent{
		Type:         domain.EventDownloaded,
		Asset:        out,
		Path:         filePath,
		RelativePath: res.RelativePath(),
		Bytes:        written,
	})
	return &out, storedFile{Path: filePath, Bytes: written}, nil
}

// Delete removes the folder holding the first asset of the group. A folder
// that does not exist is treated as already deleted.
func (m *AssetManager) Delete(ctx context.Context, assets []domain.Asset) (*domain.Asset, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: delete called without assets", domain.ErrInvalidAsset)
	}
	asset := assets[0]
	m.logger.Debug("Asset deletion called",
		zap.String("uid", asset.UID),
		zap.String("locale", asset.Locale),
		zap.Int("group_size", len(assets)))

	if err := asset.ValidateForRemoval(); err != nil {
		return nil, err
	}

	relPath, err := m.storedRelativePath(asset)
	if err != nil {
		return nil, err
	}
	relFolder := filepath.Dir(relPath)
	folderPath := filepath.Join(m.store.BaseDir, relFolder)

	// The folder must sit below the locale root
	if !isStrictlyBelow(filepath.Join(m.store.BaseDir, asset.Locale), folderPath) {
		return nil, fmt.Errorf("%w: refusing to remove %s", domain.ErrUnsafeRemoval, folderPath)
	}

	out := asset.Clone()
	if err := m.remove(ctx, folderPath); err != nil {
		return nil, err
	}

	m.notifyRemoved(ctx, domain.AssetEvent{
		Type:         domain.EventDeleted,
		Asset:        out,
		Path:         folderPath,
		RelativePath: filepath.ToSlash(relFolder),
	})
	return &out, nil
}

// Unpublish removes only the stored file of the asset. A missing file is
// treated as already unpublished.
func (m *AssetManager) Unpublish(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	m.logger.Debug("Asset unpublish called",
		zap.String("uid", asset.UID),
		zap.String("locale", asset.Locale))

	if err := asset.ValidateForRemoval(); err != nil {
		return nil, err
	}

	relPath, err := m.storedRelativePath(asset)
	if err != nil {
		return nil, err
	}
	filePath := filepath.Join(m.store.BaseDir, relPath)
	if !isStrictlyBelow(filepath.Join(m.store.BaseDir, asset.Locale), filePath) {
		return nil, fmt.Errorf("%w: refusing to remove %s", domain.ErrUnsafeRemoval, filePath)
	}

	out := asset.Clone()
	if err := m.remove(ctx, filePath); err != nil {
		return nil, err
	}

	m.notifyRemoved(ctx, domain.AssetEvent{
		Type:         domain.EventUnpublished,
		Asset:        out,
		Path:         filePath,
		RelativePath: filepath.ToSlash(relPath),
	})
	return &out, nil
}

// remove deletes path when it exists
func (m *AssetManager) remove(ctx context.Context, path string) error {
	exists, err := m.fs.Exists(path)
	if err != nil {
		return &domain.FilesystemError{Op: "stat", Path: path, Err: err}
	}
	if !exists {
		m.logger.Debug("Asset path did not exist", zap.String("path", path))
		return nil
	}
	if err := m.fs.RemoveAll(path); err != nil {
		m.logger.Error("Error while removing asset path", zap.String("path", path), zap.Error(err))
		return &domain.FilesystemError{Op: "remove", Path: path, Err: err}
	}
	m.logger.Info("Asset removed", zap.String("path", path))
	return nil
}

func (m *AssetManager) skipDownload(ctx context.Context, res Resolution, filePath string) *domain.Asset {
	out := res.Asset
	out.InternalURL = m.internalURL(res)
	m.logger.Debug("Skipping asset download, file already present",
		zap.String("uid", out.UID),
		zap.String("path", filePath))
	m.notifyStored(ctx, domain.AssetEvent{
		Type:         domain.EventDownloaded,
		Asset:        out,
		Path:         filePath,
		RelativePath: res.RelativePath(),
	})
	return &out
}

// storedRelativePath returns the path of the stored file relative to the
// base directory. legacy_flat records it as the internal URL; otherwise it
// is re-derived from the asset metadata.
func (m *AssetManager) storedRelativePath(asset domain.Asset) (string, error) {
	if m.store.Layout == domain.LayoutLegacyFlat && asset.InternalURL != "" {
		rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(asset.InternalURL, "/")))
		if rel == "." || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("%w: internal url %q", domain.ErrUnsafeRemoval, asset.InternalURL)
		}
		return rel, nil
	}

	res, err := m.resolver.Resolve(asset)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(res.RelativePath()), nil
}

func (m *AssetManager) absPath(res Resolution) string {
	return filepath.Join(m.store.BaseDir, filepath.FromSlash(res.RelativePath()))
}

// internalURL is what gets recorded on the asset after a download
func (m *AssetManager) internalURL(res Resolution) string {
	if m.store.Layout == domain.LayoutPrefixedV2 {
		return m.locales.LocaleURL(res.Asset.Locale, strings.Join(res.Components, "/"))
	}
	return res.RelativePath()
}

func (m *AssetManager) notifyStored(ctx context.Context, event domain.AssetEvent) {
	if m.observer == nil {
		return
	}
	if err := m.observer.OnStored(ctx, event); err != nil {
		m.logger.Warn("Asset observer failed",
			zap.String("event", string(event.Type)),
			zap.String("uid", event.Asset.UID),
			zap.Error(err))
	}
}

func (m *AssetManager) notifyRemoved(ctx context.Context, event domain.AssetEvent) {
	if m.observer == nil {
		return
	}
	if err := m.observer.OnRemoved(ctx, event); err != nil {
		m.logger.Warn("Asset observer failed",
			zap.String("event", string(event.Type)),
			zap.String("uid", event.Asset.UID),
			zap.Error(err))
	}
}

// filenameFromDisposition extracts the filename parameter of a
// Content-Disposition header. Malformed headers fall back to the text after
// the first '='.
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	} else if i := strings.Index(header, "="); i >= 0 {
		name = strings.Trim(strings.TrimSpace(header[i+1:]), `"`)
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = filepath.Base(filepath.FromSlash(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// isStrictlyBelow reports whether target is inside root and not root itself
func isStrictlyBelow(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
