package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce-sync/core/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned for a date query that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// periods maps the accepted revenue trend windows to days.
var periods = map[string]int{"7d": 7, "30d": 30, "90d": 90}

// RevenuePoint is the revenue of one day.
type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Service computes dashboard aggregations over a tenant's synced data.
type Service struct {
	store  *store.Store
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a new insights service.
func NewService(s *store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, now: time.Now, logger: logger}
}

// Overview returns the tenant's counters and revenue.
func (s *Service) Overview(ctx context.Context, tenantID string) (*store.Overview, error) {
	return s.store.Overview(ctx, tenantID)
}

// OrdersByDate groups orders per day between two inclusive dates. Either
// bound may be empty.
func (s *Service) OrdersByDate(ctx context.Context, tenantID, startDate, endDate string) ([]store.DailyTotal, error) {
	var from, to time.Time
	if startDate != "" {
		d, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("startDate %q: %w", startDate, ErrInvalidDate)
		}
		from = d
	}
	if endDate != "" {
		d, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("endDate %q: %w", endDate, ErrInvalidDate)
		}
		to = d.AddDate(0, 0, 1)
	}
	return s.store.DailyTotals(ctx, tenantID, from, to)
}

// TopCustomers returns the biggest spenders, five by default.
func (s *Service) TopCustomers(ctx context.Context, tenantID string, limit int) ([]store.Customer, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 100 {
		limit = 100
	}
	return s.store.TopCustomers(ctx, tenantID, limit)
}

// RevenueTrend returns daily revenue over the last 7d, 30d or 90d. Unknown
// periods fall back to 30d.
func (s *Service) RevenueTrend(ctx context.Context, tenantID, period string) ([]RevenuePoint, error) {
	days, ok := periods[period]
	if !ok {
		days = 30
	}
	from := s.now().UTC().AddDate(0, 0, -days)

	totals, err := s.store.DailyTotals(ctx, tenantID, from, time.Time{})
	if err != nil {
		return nil, err
	}
	out := make([]RevenuePoint, len(totals))
	for i, d := range totals {
		out[i] = RevenuePoint{Date: d.Date, Revenue: d.Revenue}
	}
	return out, nil
}
