package syncjob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"commerce-sync/core/lock"
	"commerce-sync/core/reconcile"
	"commerce-sync/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrSyncInProgress is returned when another process holds the tenant's lock.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrMissingToken is returned by Connect for an empty access token.
	ErrMissingToken = errors.New("access token is required")
	// ErrArchiveDisabled is returned by report lookups when storage is off.
	ErrArchiveDisabled = errors.New("report archive is disabled")
)

// Runner executes one sync job for a tenant.
type Runner interface {
	Run(ctx context.Context, tenantID string) (*reconcile.Report, error)
}

// RunObserver is told about every finished run.
type RunObserver interface {
	ObserveRun(status string, elapsed time.Duration)
}

// Result is the outcome of a sync.
type Result struct {
	Run    *store.SyncRun    `json:"run"`
	Report *reconcile.Report `json:"report"`
}

// Service connects tenants and runs their syncs, one at a time per tenant.
type Service struct {
	store   *store.Store
	runner  Runner
	locker  lock.Locker
	archive *Archive
	metrics RunObserver
	timeout time.Duration
	group   singleflight.Group
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithArchive uploads every finished report.
func WithArchive(a *Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithMetrics records run outcomes.
func WithMetrics(m RunObserver) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTimeout bounds each sync job.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a new sync job service.
func NewService(st *store.Store, runner Runner, locker lock.Locker, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		runner: runner,
		locker: locker,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect stores the platform access token of a tenant.
func (s *Service) Connect(ctx context.Context, tenantID, accessToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return ErrMissingToken
	}
	if err := s.store.SetAccessToken(ctx, tenantID, accessToken); err != nil {
		return err
	}
	s.logger.Info("Shop connected", zap.String("tenant_id", tenantID))
	return nil
}

// Sync runs a sync for the tenant. Concurrent calls in this process share
// one run; a run held by another process fails with ErrSyncInProgress. The
// result is returned together with the job error when the run failed.
func (s *Service) Sync(ctx context.Context, tenantID string) (*Result, error) {
	v, err, shared := s.group.Do(tenantID, func() (any, error) {
		return s.run(ctx, tenantID)
	})
	if shared {
		s.logger.Debug("Joined in-flight sync", zap.String("tenant_id", tenantID))
	}
	res, _ := v.(*Result)
	return res, err
}

func (s *Service) run(ctx context.Context, tenantID string) (*Result, error) {
	l := s.logger.With(zap.String("tenant_id", tenantID))

	lockCtx, release, err := s.locker.Acquire(ctx, tenantID)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrSyncInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			l.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	run, err := s.store.StartRun(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// The job stops when the lock is lost.
	jobCtx := lockCtx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(lockCtx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	report, runErr := s.runner.Run(jobCtx, tenantID)
	if report == nil {
		report = &reconcile.Report{State: reconcile.StateFailed}
	}

	run.Customers = report.Customers
	run.Products = report.Products
	run.Orders = report.Orders
	run.Skipped = report.Skipped
	run.Stage = string(report.State)
	run.Status = store.RunCompleted
	if runErr != nil {
		run.Status = store.RunFailed
		run.Error = runErr.Error()
		var se *reconcile.StageError
		if errors.As(runErr, &se) {
			run.Stage = string(se.Stage)
		}
		if errors.Is(context.Cause(lockCtx), lock.ErrLost) {
			runErr = fmt.Errorf("%w: %w", lock.ErrLost, runErr)
			run.Error = runErr.Error()
		}
		l.Warn("Sync failed", zap.String("stage", run.Stage), zap.Error(runErr))
	}

	// The job context may be cancelled already; bookkeeping still happens.
	bg := context.WithoutCancel(ctx)
	if err := s.store.FinishRun(bg, run); err != nil {
		l.Error("Failed to record sync run", zap.Error(err))
	}

	if s.archive != nil {
		if key, err := s.archive.Put(bg, run, report); err != nil {
			l.Warn("Failed to archive sync report", zap.Error(err))
		} else {
			l.Debug("Sync report archived", zap.String("key", key))
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveRun(run.Status, time.Since(started))
	}

	return &Result{Run: run, Report: report}, runErr
}

// Runs lists the latest sync runs of the tenant.
func (s *Service) Runs(ctx context.Context, tenantID string, limit int) ([]store.SyncRun, error) {
	return s.store.ListRuns(ctx, tenantID, limit)
}

// Report returns the archived report of a run.
func (s *Service) Report(ctx context.Context, tenantID, runID string) (*ArchivedReport, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(ctx, tenantID, runID)
}

// Reports lists the run ids with an archived report.
func (s *Service) Reports(ctx context.Context, tenantID string) ([]string, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Keys(ctx, tenantID)
}
