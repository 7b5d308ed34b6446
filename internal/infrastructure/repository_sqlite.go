package infrastructure

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// SQLiteRepository implements AssetRepository and JobRepository using SQLite
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository opens the database at dbPath and migrates the schema
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.AssetRecord{}, &domain.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// AssetRepository implementation
// ============================================================================

// Save inserts a record or updates the existing one for the same uid and locale
func (r *SQLiteRepository) Save(record *domain.AssetRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"filename", "url", "internal_url", "file_path", "bytes", "status",
			"error_message", "updated_at", "stored_at", "removed_at",
		}),
	}).Create(record).Error
}

// FindByKey finds a record by uid and locale. Returns nil if not found
func (r *SQLiteRepository) FindByKey(uid, locale string) (*domain.AssetRecord, error) {
	var record domain.AssetRecord
	err := r.db.Where("uid = ? AND locale = ?", uid, locale).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAll finds all records with optional filters
func (r *SQLiteRepository) FindAll(filters map[string]interface{}) ([]*domain.AssetRecord, error) {
	var records []*domain.AssetRecord
	query := r.db

	for key, value := range filters {
		if !domain.IsAllowedRecordFilter(key) {
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("updated_at DESC").Find(&records).Error
	return records, err
}

// GetStats returns ledger statistics
func (r *SQLiteRepository) GetStats() (*domain.AssetStats, error) {
	stats := &domain.AssetStats{}

	if err := r.db.Model(&domain.AssetRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.AssetStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.AssetRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.AssetPending:
			stats.Pending = sc.Count
		case domain.AssetDownloading:
			stats.Downloading = sc.Count
		case domain.AssetStored:
			stats.Stored = sc.Count
		case domain.AssetFailed:
			stats.Failed = sc.Count
		case domain.AssetRemoving:
			stats.Removing = sc.Count
		case domain.AssetAbsent:
			stats.Absent = sc.Count
		}
	}

	if err := r.db.Model(&domain.AssetRecord{}).
		Where("status = ?", domain.AssetStored).
		Select("COALESCE(SUM(bytes), 0)").
		Scan(&stats.StoredBytes).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// ============================================================================
// JobRepository implementation
// ============================================================================

// CreateJob creates a new job
func (r *SQLiteRepository) CreateJob(job *domain.Job) error {
	return r.db.Create(job).Error
}

// UpdateJob updates an existing job
func (r *SQLiteRepository) UpdateJob(job *domain.Job) error {
	return r.db.Save(job).Error
}

// FindJobByID finds a job by ID. Returns nil if not found
func (r *SQLiteRepository) FindJobByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// FindQueuedJobs finds all queued jobs ordered by creation time
func (r *SQLiteRepository) FindQueuedJobs() ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("status = ?", domain.JobQueued).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}

// FindJobs finds all jobs with optional filters
func (r *SQLiteRepository) FindJobs(filters map[string]interface{}) ([]*domain.Job, error) {
	var jobs []*domain.Job
	query := r.db

	for key, value := range filters {
		if !domain.IsAllowedJobFilter(key) {
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// ResetOrphanedJobs requeues jobs left processing by a previous run
func (r *SQLiteRepository) ResetOrphanedJobs() (int64, error) {
	result := r.db.Model(&domain.Job{}).
		Where("status = ?", domain.JobProcessing).
		Updates(map[string]interface{}{
			"status":     domain.JobQueued,
			"started_at": nil,
		})
	return result.RowsAffected, result.Error
}
