package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Overview summarises a tenant's synced data.
type Overview struct {
	TotalCustomers    int64           `json:"total_customers"`
	TotalProducts     int64           `json:"total_products"`
	TotalOrders       int64           `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// DailyTotal is the order count and revenue of one calendar day (UTC).
type DailyTotal struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Overview computes the dashboard counters of a tenant.
func (s *Store) Overview(ctx context.Context, tenantID string) (*Overview, error) {
	db := s.db.WithContext(ctx)
	out := &Overview{}

	if err := db.Model(&Customer{}).Where("tenant_id = ?", tenantID).Count(&out.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := db.Model(&Product{}).Where("tenant_id = ?", tenantID).Count(&out.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var agg struct {
		Orders  int64
		Revenue decimal.Decimal
	}
	err := db.Model(&Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS revenue").
		Where("tenant_id = ?", tenantID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	out.TotalOrders = agg.Orders
	out.TotalRevenue = agg.Revenue.Round(2)
	if agg.Orders > 0 {
		out.AverageOrderValue = agg.Revenue.Div(decimal.NewFromInt(agg.Orders)).Round(2)
	}
	return out, nil
}

// DailyTotals groups a tenant's orders placed in [from, to) by UTC day.
// A zero to means no upper bound.
func (s *Store) DailyTotals(ctx context.Context, tenantID string, from, to time.Time) ([]DailyTotal, error) {
	q := s.db.WithContext(ctx).Model(&Order{}).
		Select("order_date, total_price").
		Where("tenant_id = ?", tenantID)
	if !from.IsZero() {
		q = q.Where("order_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("order_date < ?", to)
	}

	var rows []struct {
		OrderDate  time.Time
		TotalPrice decimal.Decimal
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	byDay := make(map[string]*DailyTotal)
	for _, r := range rows {
		day := r.OrderDate.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DailyTotal{Date: day}
			byDay[day] = d
		}
		d.Orders++
		d.Revenue = d.Revenue.Add(r.TotalPrice)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for _, d := range byDay {
		d.Revenue = d.Revenue.Round(2)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// TopCustomers returns the tenant's customers with the highest total spend.
func (s *Store) TopCustomers(ctx context.Context, tenantID string, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []Customer
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("total_spent DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load top customers: %w", err)
	}
	return out, nil
}
