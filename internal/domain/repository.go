package domain

// AssetRepository defines the interface for the asset ledger
type AssetRepository interface {
	// Save inserts or updates a record keyed by uid and locale
	Save(record *AssetRecord) error

	// FindByKey finds a record by uid and locale. Returns nil if not found
	FindByKey(uid, locale string) (*AssetRecord, error)

	// FindAll finds all records with optional filters
	FindAll(filters map[string]interface{}) ([]*AssetRecord, error)

	// GetStats returns ledger statistics
	GetStats() (*AssetStats, error)
}

// JobRepository defines the interface for job persistence
type JobRepository interface {
	// CreateJob creates a new job
	CreateJob(job *Job) error

	// UpdateJob updates an existing job
	UpdateJob(job *Job) error

	// FindJobByID finds a job by ID
	FindJobByID(id string) (*Job, error)

	// FindQueuedJobs finds all queued jobs ordered by creation time
	FindQueuedJobs() ([]*Job, error)

	// FindJobs finds all jobs with optional filters
	FindJobs(filters map[string]interface{}) ([]*Job, error)

	// ResetOrphanedJobs requeues jobs left processing by a previous run
	ResetOrphanedJobs() (int64, error)
}

// AssetStats represents ledger statistics
type AssetStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Downloading int64 `json:"downloading"`
	Stored      int64 `json:"stored"`
	Failed      int64 `json:"failed"`
	Removing    int64 `json:"removing"`
	Absent      int64 `json:"absent"`
	StoredBytes int64 `json:"stored_bytes"`
}

// allowedRecordFilters lists columns FindAll accepts as filters
var allowedRecordFilters = map[string]bool{
	"status": true,
	"locale": true,
	"uid":    true,
}

// allowedJobFilters lists columns FindJobs accepts as filters
var allowedJobFilters = map[string]bool{
	"status":    true,
	"action":    true,
	"asset_key": true,
}

// IsAllowedRecordFilter reports whether key may be used to filter asset records
func IsAllowedRecordFilter(key string) bool {
	return allowedRecordFilters[key]
}

// IsAllowedJobFilter reports whether key may be used to filter jobs
func IsAllowedJobFilter(key string) bool {
	return allowedJobFilters[key]
}
