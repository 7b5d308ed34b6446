package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
	"github.com/yourusername/asset-store-fs/pkg/logger"
)

// AssetProcessor executes lifecycle operations for queued jobs
type AssetProcessor interface {
	Download(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
	Delete(ctx context.Context, assets []domain.Asset) (*domain.Asset, error)
	Unpublish(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
}

// QueueManager manages the job queue. Jobs for the same asset key run in
// the order they were queued; different keys run in parallel.
type QueueManager struct {
	repo        domain.JobRepository
	processor   AssetProcessor
	config      *domain.QueueConfig
	multiLogger *logger.MultiLogger
	mu          sync.RWMutex
	running     bool
	stopChan    chan struct{}
	wake        chan struct{}
	inflight    map[string]bool
	workerWg    sync.WaitGroup
}

// NewQueueManager creates a new queue manager
func NewQueueManager(
	repo domain.JobRepository,
	processor AssetProcessor,
	config *domain.QueueConfig,
	multiLogger *logger.MultiLogger,
) *QueueManager {
	return &QueueManager{
		repo:        repo,
		processor:   processor,
		config:      config,
		multiLogger: multiLogger,
		wake:        make(chan struct{}, 1),
		inflight:    make(map[string]bool),
	}
}

// Start requeues jobs orphaned by a previous run and starts the queue processor
func (qm *QueueManager) Start(ctx context.Context) error {
	qm.mu.Lock()
	if qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager already running")
	}
	qm.running = true
	qm.stopChan = make(chan struct{})
	qm.mu.Unlock()

	if n, err := qm.repo.ResetOrphanedJobs(); err != nil {
		qm.logError("Failed to reset orphaned jobs", zap.Error(err))
	} else if n > 0 {
		qm.logEvent("orphaned_jobs_requeued", zap.Int64("count", n))
	}

	qm.logEvent("queue_started")

	qm.workerWg.Add(1)
	go qm.processQueue(ctx, qm.stopChan)

	return nil
}

// Stop stops the queue processor and waits for running jobs
func (qm *QueueManager) Stop() error {
	qm.mu.Lock()
	if !qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager not running")
	}
	qm.running = false
	close(qm.stopChan)
	qm.mu.Unlock()

	qm.logEvent("queue_stopped")
	qm.workerWg.Wait()

	return nil
}

// IsRunning returns whether the queue manager is running
func (qm *QueueManager) IsRunning() bool {
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	return qm.running
}

// Enqueue adds a job to the queue. An identical job that is still queued
// is returned instead of creating a second one.
func (qm *QueueManager) Enqueue(action domain.JobAction, assets []domain.Asset) (*domain.Job, error) {
	job, err := domain.NewJob(action, assets)
	if err != nil {
		return nil, err
	}

	queued, err := qm.repo.FindJobs(map[string]interface{}{
		"status":    string(domain.JobQueued),
		"action":    string(action),
		"asset_key": job.AssetKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check queued jobs: %w", err)
	}
	for _, existing := range queued {
		if existing.Payload == job.Payload {
			qm.logEvent("job_coalesced",
				zap.String("id", existing.ID),
				zap.String("action", string(action)),
				zap.String("asset_key", job.AssetKey))
			return existing, nil
		}
	}

	if err := qm.repo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	qm.logEvent("job_added",
		zap.String("id", job.ID),
		zap.String("action", string(action)),
		zap.String("asset_key", job.AssetKey))

	select {
	case qm.wake <- struct{}{}:
	default:
	}
	return job, nil
}

// GetJob retrieves a job by ID
func (qm *QueueManager) GetJob(id string) (*domain.Job, error) {
	return qm.repo.FindJobByID(id)
}

// ListJobs lists all jobs with optional filters
func (qm *QueueManager) ListJobs(filters map[string]interface{}) ([]*domain.Job, error) {
	return qm.repo.FindJobs(filters)
}

// processQueue polls for queued jobs until stopped
func (qm *QueueManager) processQueue(ctx context.Context, stop <-chan struct{}) {
	defer qm.workerWg.Done()

	ticker := time.NewTicker(qm.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			qm.logEvent("queue_processor_stopped", zap.String("reason", "context_cancelled"))
			return
		case <-stop:
			qm.logEvent("queue_processor_stopped", zap.String("reason", "stop_signal"))
			return
		case <-ticker.C:
			qm.dispatch(ctx)
		case <-qm.wake:
			qm.dispatch(ctx)
		}
	}
}

// dispatch starts one worker per asset key that has queued jobs and no
// worker running yet.
func (qm *QueueManager) dispatch(ctx context.Context) {
	queued, err := qm.repo.FindQueuedJobs()
	if err != nil {
		qm.logError("Failed to fetch queued jobs", zap.Error(err))
		return
	}

	groups := make(map[string][]*domain.Job)
	var order []string
	for _, job := range queued {
		if _, ok := groups[job.AssetKey]; !ok {
			order = append(order, job.AssetKey)
		}
		groups[job.AssetKey] = append(groups[job.AssetKey], job)
	}

	for _, key := range order {
		qm.mu.Lock()
		if qm.inflight[key] {
			qm.mu.Unlock()
			continue
		}
		qm.inflight[key] = true
		qm.mu.Unlock()

		qm.workerWg.Add(1)
		go func(key string, jobs []*domain.Job) {
			defer qm.workerWg.Done()
			defer func() {
				qm.mu.Lock()
				delete(qm.inflight, key)
				qm.mu.Unlock()
			}()

			for _, job := range jobs {
				if ctx.Err() != nil {
					return
				}
				qm.ProcessJob(ctx, job)
			}
		}(key, groups[key])
	}
}

// ProcessJob runs a single job and persists its outcome
func (qm *QueueManager) ProcessJob(ctx context.Context, job *domain.Job) error {
	job.MarkProcessing()
	if err := qm.repo.UpdateJob(job); err != nil {
		qm.logError("Failed to update job status", zap.String("id", job.ID), zap.Error(err))
		return fmt.Errorf("failed to update job status: %w", err)
	}

	qm.logEvent("job_started",
		zap.String("id", job.ID),
		zap.String("action", string(job.Action)),
		zap.String("asset_key", job.AssetKey))

	result, err := qm.run(ctx, job)
	if err != nil {
		job.MarkFailed(err)
		if uerr := qm.repo.UpdateJob(job); uerr != nil {
			qm.logError("Failed to update job status", zap.String("id", job.ID), zap.Error(uerr))
		}
		qm.logEvent("job_failed", zap.String("id", job.ID), zap.Error(err))
		qm.logError("Failed to process job",
			zap.String("id", job.ID),
			zap.String("action", string(job.Action)),
			zap.Error(err))
		return err
	}

	job.MarkCompleted(result)
	if err := qm.repo.UpdateJob(job); err != nil {
		qm.logError("Failed to update job status", zap.String("id", job.ID), zap.Error(err))
	}
	qm.logEvent("job_completed",
		zap.String("id", job.ID),
		zap.String("action", string(job.Action)),
		zap.String("asset_key", job.AssetKey))
	return nil
}

func (qm *QueueManager) run(ctx context.Context, job *domain.Job) (*domain.Asset, error) {
	assets, err := job.Assets()
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: job has no assets", domain.ErrInvalidAsset)
	}

	switch job.Action {
	case domain.ActionDownload:
		return qm.processor.Download(ctx, assets[0])
	case domain.ActionDelete:
		return qm.processor.Delete(ctx, assets)
	case domain.ActionUnpublish:
		return qm.processor.Unpublish(ctx, assets[0])
	}
	return nil, fmt.Errorf("invalid action: %s", job.Action)
}

// JobResult decodes the asset stored on a completed job
func JobResult(job *domain.Job) (*domain.Asset, error) {
	if job.Result == "" {
		return nil, nil
	}
	var asset domain.Asset
	if err := json.Unmarshal([]byte(job.Result), &asset); err != nil {
		return nil, fmt.Errorf("failed to decode job result: %w", err)
	}
	return &asset, nil
}

func (qm *QueueManager) logEvent(event string, fields ...zap.Field) {
	if qm.multiLogger != nil {
		qm.multiLogger.LogQueueEvent(event, fields...)
	}
}

func (qm *QueueManager) logError(msg string, fields ...zap.Field) {
	if qm.multiLogger != nil {
		qm.multiLogger.LogAppError(msg, fields...)
	}
}
