package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus represents where an asset is in its lifecycle
type AssetStatus string

const (
	AssetPending     AssetStatus = "pending"
	AssetDownloading AssetStatus = "downloading"
	AssetStored      AssetStatus = "stored"
	AssetFailed      AssetStatus = "failed"
	AssetRemoving    AssetStatus = "removing"
	AssetAbsent      AssetStatus = "absent"
)

// AssetRecord is the ledger entry for one asset in one locale
type AssetRecord struct {
	ID           string      `json:"id" gorm:"primaryKey"`
	UID          string      `json:"uid" gorm:"not null;uniqueIndex:idx_asset_locale"`
	Locale       string      `json:"locale" gorm:"not null;uniqueIndex:idx_asset_locale"`
	Filename     string      `json:"filename"`
	URL          string      `json:"url"`
	InternalURL  string      `json:"internal_url,omitempty"`
	FilePath     string      `json:"file_path,omitempty"`
	Bytes        int64       `json:"bytes"`
	Status       AssetStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	StoredAt     *time.Time  `json:"stored_at,omitempty"`
	RemovedAt    *time.Time  `json:"removed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (AssetRecord) TableName() string {
	return "asset_records"
}

// NewAssetRecord creates a pending record for an asset
func NewAssetRecord(asset Asset) *AssetRecord {
	now := time.Now()
	return &AssetRecord{
		ID:        uuid.New().String(),
		UID:       asset.UID,
		Locale:    asset.Locale,
		Filename:  asset.Filename,
		URL:       asset.URL,
		Status:    AssetPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDownloading marks the asset as being fetched
func (r *AssetRecord) MarkDownloading() {
	r.Status = AssetDownloading
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now()
}

// MarkStored marks the asset as persisted on disk
func (r *AssetRecord) MarkStored(asset Asset, filePath string, bytes int64) {
	r.Status = AssetStored
	r.Filename = asset.Filename
	r.URL = asset.URL
	r.InternalURL = asset.InternalURL
	r.FilePath = filePath
	r.Bytes = bytes
	r.ErrorMessage = ""
	now := time.Now()
	r.StoredAt = &now
	r.RemovedAt = nil
	r.UpdatedAt = now
}

// MarkFailed marks the asset download as failed
func (r *AssetRecord) MarkFailed(err error) {
	r.Status = AssetFailed
	r.ErrorMessage = err.Error()
	r.UpdatedAt = time.Now()
}

// MarkRemoving marks the asset as being removed
func (r *AssetRecord) MarkRemoving() {
	r.Status = AssetRemoving
	r.UpdatedAt = time.Now()
}

// MarkAbsent marks the asset as no longer on disk
func (r *AssetRecord) MarkAbsent() {
	r.Status = AssetAbsent
	r.ErrorMessage = ""
	now := time.Now()
	r.RemovedAt = &now
	r.UpdatedAt = now
}

// MarkRemovalFailed restores the status held before the removal started
func (r *AssetRecord) MarkRemovalFailed(previous AssetStatus, err error) {
	r.Status = previous
	r.ErrorMessage = err.Error()
	r.UpdatedAt = time.Now()
}

// IsStored checks if the asset is currently on disk
func (r *AssetRecord) IsStored() bool {
	return r.Status == AssetStored
}

// IsBusy checks if an operation is in progress for the asset
func (r *AssetRecord) IsBusy() bool {
	return r.Status == AssetDownloading || r.Status == AssetRemoving
}
