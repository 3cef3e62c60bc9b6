// Package service contains the application services sitting between HTTP
// handlers and repositories.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/printops/plate-service/internal/jobs"
	"github.com/printops/plate-service/internal/repository"
)

// HistoryService records finished optimization runs and serves recent history.
// This interface can be mocked for testing.
type HistoryService interface {
	// RecordRun persists a summary of a finished job. Best-effort: errors are
	// logged, never propagated to the job itself.
	RecordRun(ctx context.Context, job jobs.Job)

	// ListRuns retrieves recent run summaries, newest first.
	ListRuns(ctx context.Context, limit, skip int) ([]*repository.RunDocument, error)
}

// HistoryServiceImpl implements the HistoryService interface.
type HistoryServiceImpl struct {
	repo repository.RunsRepositoryInterface
	log  zerolog.Logger
}

// NewHistoryService creates a new history service implementation.
func NewHistoryService(repo repository.RunsRepositoryInterface, log zerolog.Logger) HistoryService {
	return &HistoryServiceImpl{repo: repo, log: log}
}

// recordTimeout bounds the fire-and-forget write after job completion.
const recordTimeout = 5 * time.Second

// RecordRun persists a summary of a finished job.
func (s *HistoryServiceImpl) RecordRun(ctx context.Context, job jobs.Job) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	doc := &repository.RunDocument{
		JobID:      job.ID,
		Status:     string(job.State),
		DurationMS: job.Duration().Milliseconds(),
		Error:      job.Error,
		CreatedAt:  job.FinishedAt,
	}
	doc.TagCount = len(job.Instance.Tags)
	doc.PlateCount = job.Instance.PlateCount
	doc.UpsPerPlate = job.Instance.UpsPerPlate
	if job.Solution != nil {
		doc.TotalSheets = job.Solution.Summary.TotalSheets
		doc.TotalProduced = job.Solution.Summary.TotalProduced
		doc.WastePercentage = job.Solution.Summary.WastePercentage
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to persist run history")
	}
}

// ListRuns retrieves recent run summaries, newest first.
func (s *HistoryServiceImpl) ListRuns(ctx context.Context, limit, skip int) ([]*repository.RunDocument, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.Query(ctx, repository.RunQueryOptions{Limit: limit, Skip: skip})
}
