package store

import (
	"context"
	"fmt"
	"time"
)

// StartRun records a new running sync for the tenant.
func (s *Store) StartRun(ctx context.Context, tenantID string) (*SyncRun, error) {
	run := &SyncRun{
		TenantID:  tenantID,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}
	return run, nil
}

// FinishRun persists the final state of a run.
func (s *Store) FinishRun(ctx context.Context, run *SyncRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	err := s.db.WithContext(ctx).Model(&SyncRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"status":      run.Status,
			"stage":       run.Stage,
			"customers":   run.Customers,
			"products":    run.Products,
			"orders":      run.Orders,
			"skipped":     run.Skipped,
			"error":       run.Error,
			"finished_at": run.FinishedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs of a tenant, newest first.
func (s *Store) ListRuns(ctx context.Context, tenantID string, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []SyncRun
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}
