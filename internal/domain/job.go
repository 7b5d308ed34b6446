package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobAction is the lifecycle operation a queued job performs
type JobAction string

const (
	ActionDownload  JobAction = "download"
	ActionDelete    JobAction = "delete"
	ActionUnpublish JobAction = "unpublish"
)

// JobStatus represents the current status of a queued job
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is a lifecycle event accepted from the sync engine and processed in the background
type Job struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Action       JobAction  `json:"action" gorm:"not null"`
	AssetKey     string     `json:"asset_key" gorm:"not null;index"`
	Payload      string     `json:"payload" gorm:"type:text"` // JSON []Asset
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Result       string     `json:"result,omitempty" gorm:"type:text"` // JSON Asset
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// NewJob creates a queued job for the given assets
func NewJob(action JobAction, assets []Asset) (*Job, error) {
	if !ValidateAction(action) {
		return nil, fmt.Errorf("invalid action: %s", action)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: job has no assets", ErrInvalidAsset)
	}
	if action != ActionDelete && len(assets) > 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one asset", ErrInvalidAsset, action)
	}

	payload, err := json.Marshal(assets)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job payload: %w", err)
	}

	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		Action:    action,
		AssetKey:  assets[0].Key(),
		Payload:   string(payload),
		Status:    JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Assets decodes the job payload
func (j *Job) Assets() ([]Asset, error) {
	var assets []Asset
	if err := json.Unmarshal([]byte(j.Payload), &assets); err != nil {
		return nil, fmt.Errorf("failed to decode job payload: %w", err)
	}
	return assets, nil
}

// MarkProcessing marks the job as processing
func (j *Job) MarkProcessing() {
	j.Status = JobProcessing
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted marks the job as completed with the resulting asset
func (j *Job) MarkCompleted(result *Asset) {
	j.Status = JobCompleted
	if result != nil {
		if data, err := json.Marshal(result); err == nil {
			j.Result = string(data)
		}
	}
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed
func (j *Job) MarkFailed(err error) {
	j.Status = JobFailed
	j.ErrorMessage = err.Error()
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// IsTerminal checks if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// ValidateAction checks if a job action is valid
func ValidateAction(action JobAction) bool {
	return action == ActionDownload || action == ActionDelete || action == ActionUnpublish
}
