package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
	"github.com/yourusername/asset-store-fs/pkg/logger"
)

// AssetService runs lifecycle operations through the AssetManager while
// keeping the asset ledger current. Operations on the same asset key are
// serialized; different keys run in parallel.
type AssetService struct {
	manager     *AssetManager
	repo        domain.AssetRepository
	logger      *zap.Logger
	multiLogger *logger.MultiLogger

	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock is a limit=1 semaphore shared by callers working on the same key
type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewAssetService creates a new asset service. multiLogger may be nil.
func NewAssetService(
	manager *AssetManager,
	repo domain.AssetRepository,
	multiLogger *logger.MultiLogger,
	log *zap.Logger,
) *AssetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetService{
		manager:     manager,
		repo:        repo,
		logger:      log,
		multiLogger: multiLogger,
		locks:       make(map[string]*keyLock),
	}
}

// Manager returns the wrapped asset manager
func (s *AssetService) Manager() *AssetManager {
	return s.manager
}

// acquire blocks until the caller holds key. The returned func releases it.
func (s *AssetService) acquire(ctx context.Context, key string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

// Download downloads an asset and records the outcome in the ledger
func (s *AssetService) Download(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	if err := asset.ValidateForDownload(); err != nil {
		return nil, err
	}

	unlock, err := s.acquire(ctx, asset.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.loadRecord(asset)
	if err != nil {
		return nil, err
	}

	record.MarkDownloading()
	if err := s.repo.Save(record); err != nil {
		return nil, fmt.Errorf("failed to update asset status: %w", err)
	}

	out, stored, err := s.manager.download(ctx, asset)
	if err != nil {
		record.MarkFailed(err)
		s.saveRecord(record)
		s.logFailure("asset_download_failed", asset, err)
		return nil, err
	}

	bytes := stored.Bytes
	if stored.Skipped {
		bytes = record.Bytes
	}
	record.MarkStored(*out, stored.Path, bytes)
	s.saveRecord(record)

	if s.multiLogger != nil {
		s.multiLogger.LogLifecycleEvent("asset_downloaded",
			zap.String("uid", out.UID),
			zap.String("locale", out.Locale),
			zap.String("path", stored.Path),
			zap.String("internal_url", out.InternalURL),
			zap.Int64("bytes", stored.Bytes),
			zap.Bool("skipped", stored.Skipped))
	}
	return out, nil
}

// Delete removes the folder of an asset group and marks the first asset absent
func (s *AssetService) Delete(ctx context.Context, assets []domain.Asset) (*domain.Asset, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: delete called without assets", domain.ErrInvalidAsset)
	}
	return s.remove(ctx, assets[0], "asset_deleted", func(first domain.Asset) (*domain.Asset, error) {
		group := append([]domain.Asset{first}, assets[1:]...)
		return s.manager.Delete(ctx, group)
	})
}

// Unpublish removes the stored file of an asset and marks it absent
func (s *AssetService) Unpublish(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	return s.remove(ctx, asset, "asset_unpublished", func(a domain.Asset) (*domain.Asset, error) {
		return s.manager.Unpublish(ctx, a)
	})
}

func (s *AssetService) remove(ctx context.Context, asset domain.Asset, event string, op func(domain.Asset) (*domain.Asset, error)) (*domain.Asset, error) {
	if err := asset.ValidateForRemoval(); err != nil {
		return nil, err
	}

	unlock, err := s.acquire(ctx, asset.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.loadRecord(asset)
	if err != nil {
		return nil, err
	}
	previous := record.Status

	asset = withRecordedLocation(asset, record)

	record.MarkRemoving()
	if err := s.repo.Save(record); err != nil {
		return nil, fmt.Errorf("failed to update asset status: %w", err)
	}

	out, err := op(asset)
	if err != nil {
		record.MarkRemovalFailed(previous, err)
		s.saveRecord(record)
		s.logFailure(event+"_failed", asset, err)
		return nil, err
	}

	record.MarkAbsent()
	s.saveRecord(record)

	if s.multiLogger != nil {
		s.multiLogger.LogLifecycleEvent(event,
			zap.String("uid", asset.UID),
			zap.String("locale", asset.Locale))
	}
	return out, nil
}

// withRecordedLocation fills in what the ledger knows about where the asset
// was stored. The recorded filename wins over the request's because a
// Content-Disposition header may have renamed the file on download.
func withRecordedLocation(asset domain.Asset, record *domain.AssetRecord) domain.Asset {
	if asset.InternalURL == "" && record.InternalURL != "" {
		asset.InternalURL = record.InternalURL
	}
	if record.Filename != "" {
		asset.Filename = record.Filename
	}
	if asset.URL == "" && record.URL != "" {
		asset.URL = record.URL
	}
	return asset
}

// GetRecord returns the ledger entry of an asset, or nil when none exists
func (s *AssetService) GetRecord(uid, locale string) (*domain.AssetRecord, error) {
	return s.repo.FindByKey(uid, locale)
}

// ListRecords lists ledger entries with optional filters
func (s *AssetService) ListRecords(filters map[string]interface{}) ([]*domain.AssetRecord, error) {
	return s.repo.FindAll(filters)
}

// GetStats returns ledger statistics
func (s *AssetService) GetStats() (*domain.AssetStats, error) {
	return s.repo.GetStats()
}

func (s *AssetService) loadRecord(asset domain.Asset) (*domain.AssetRecord, error) {
	record, err := s.repo.FindByKey(asset.UID, asset.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load asset record: %w", err)
	}
	if record == nil {
		record = domain.NewAssetRecord(asset)
	}
	return record, nil
}

func (s *AssetService) saveRecord(record *domain.AssetRecord) {
	if err := s.repo.Save(record); err != nil {
		s.logger.Error("Failed to update asset status",
			zap.String("uid", record.UID),
			zap.String("locale", record.Locale),
			zap.Error(err))
	}
}

func (s *AssetService) logFailure(event string, asset domain.Asset, err error) {
	s.logger.Error("Asset operation failed",
		zap.String("event", event),
		zap.String("uid", asset.UID),
		zap.String("locale", asset.Locale),
		zap.Error(err))
	if s.multiLogger != nil {
		s.multiLogger.LogLifecycleEvent(event,
			zap.String("uid", asset.UID),
			zap.String("locale", asset.Locale),
			zap.Error(err))
		s.multiLogger.LogAppError("Asset operation failed",
			zap.String("event", event),
			zap.String("uid", asset.UID),
			zap.Error(err))
	}
}
