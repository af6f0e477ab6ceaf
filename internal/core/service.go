package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RunObserver receives pipeline and store measurements. The metrics package
// provides the production implementation.
type RunObserver interface {
	ObserveRun(format Format, outcome string, d time.Duration)
	SetStoredFiles(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(Format, string, time.Duration) {}
func (nopObserver) SetStoredFiles(int)                       {}

// Run outcomes reported to the observer.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// ServiceConfig configures a Service. Zero values select the defaults.
type ServiceConfig struct {
	StoreTTL      time.Duration
	StoreMaxFiles int
	MaxConcurrent int
	MaxWait       time.Duration
	Limits        Limits
}

// Service is the entry point for the web layer: it stores uploads and
// evaluates the pipeline against them.
type Service struct {
	store    *Store
	limiter  *RunLimiter
	limits   Limits
	observer RunObserver
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithObserver reports measurements to o.
func WithObserver(o RunObserver) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService creates a Service.
func NewService(cfg ServiceConfig, opts ...ServiceOption) *Service {
	limits := cfg.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	s := &Service{
		store:    NewStore(cfg.StoreTTL, cfg.StoreMaxFiles),
		limiter:  NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		limits:   limits.withDefaults(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the view limits applied to every evaluation.
func (s *Service) Limits() Limits { return s.limits }

// Limiter returns the evaluation limiter, used to drain on shutdown.
func (s *Service) Limiter() *RunLimiter { return s.limiter }

// Upload stores files as a new batch and returns its id.
func (s *Service) Upload(ctx context.Context, files []File) (string, []FileInfo, error) {
	if len(files) == 0 {
		return "", nil, fmt.Errorf("no files uploaded: %w", ErrEmptyFile)
	}
	batchID, infos, err := s.store.AddBatch(files)
	if err != nil {
		return "", nil, err
	}
	s.observer.SetStoredFiles(s.store.Len())

	slog.InfoContext(ctx, "files uploaded",
		"batch_id", batchID,
		"files", len(infos),
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)
	return batchID, infos, nil
}

// File returns the metadata of a stored upload.
func (s *Service) File(id string) (FileInfo, error) {
	return s.store.Info(id)
}

// Batch returns the files of an upload batch in upload order.
func (s *Service) Batch(batchID string) ([]FileInfo, error) {
	return s.store.Batch(batchID)
}

// Delete drops a stored upload.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.store.Delete(id) {
		return fmt.Errorf("file %s: %w", id, ErrFileNotFound)
	}
	s.observer.SetStoredFiles(s.store.Len())
	slog.InfoContext(ctx, "file deleted", "file_id", id)
	return nil
}

// Evaluate runs the pipeline for one stored file.
func (s *Service) Evaluate(ctx context.Context, fileID string, opts Options) (*Result, error) {
	f, info, err := s.store.Get(fileID)
	if err != nil {
		return nil, err
	}

	var res *Result
	err = s.limiter.Do(ctx, func() error {
		var runErr error
		res, runErr = Run(f, opts, s.limits)
		return runErr
	})
	s.record(ctx, info, opts, res, err)
	return res, err
}

// EvaluateBatch runs the pipeline for every file of a batch, in upload
// order, with the options optionsFor returns for each file. The batch holds
// one evaluation slot for its whole run. Per-file failures are reported in
// the items; the returned error is only set when the batch cannot run.
func (s *Service) EvaluateBatch(ctx context.Context, batchID string, optionsFor func(FileInfo) Options) ([]FileInfo, []BatchItem, error) {
	infos, err := s.store.Batch(batchID)
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]Job, 0, len(infos))
	live := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		f, _, err := s.store.Get(info.ID)
		if err != nil {
			continue // expired between listing and reading
		}
		jobs = append(jobs, Job{File: f, Options: optionsFor(info)})
		live = append(live, info)
	}

	var items []BatchItem
	err = s.limiter.Do(ctx, func() error {
		items = RunBatch(jobs, s.limits)
		return nil
	})
	if err != nil {
		s.observer.ObserveRun(FormatCSV, OutcomeRejected, 0)
		return nil, nil, err
	}

	for i, item := range items {
		s.record(ctx, live[i], jobs[i].Options, item.Result, item.Err)
	}
	return live, items, nil
}

func (s *Service) record(ctx context.Context, info FileInfo, opts Options, res *Result, err error) {
	format := opts.TargetFormat()
	switch {
	case errors.Is(err, ErrTooManyRuns), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.observer.ObserveRun(format, OutcomeRejected, 0)
		slog.WarnContext(ctx, "pipeline rejected", "file_id", info.ID, "error", err)
	case err != nil:
		s.observer.ObserveRun(format, OutcomeError, 0)
		slog.WarnContext(ctx, "pipeline failed", "file_id", info.ID, "file", info.Name, "error", err)
	default:
		s.observer.ObserveRun(format, OutcomeOK, res.Duration)
		slog.DebugContext(ctx, "pipeline evaluated",
			"file_id", info.ID,
			"rows", res.Shape.Rows,
			"cols", res.Shape.Cols,
			"export", res.Download != nil,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
}

// ServiceStatus is reported by the health endpoint.
type ServiceStatus struct {
	Store StoreStatus      `json:"store"`
	Runs  RunLimiterStatus `json:"runs"`
}

// Status returns the current store and limiter state.
func (s *Service) Status() ServiceStatus {
	return ServiceStatus{Store: s.store.Status(), Runs: s.limiter.Status()}
}
