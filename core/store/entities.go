package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	customerColumns = []string{"email", "first_name", "last_name", "phone", "total_spent", "orders_count", "updated_at"}
	productColumns  = []string{"title", "description", "price", "compare_at_price", "inventory_qty", "image_url", "updated_at"}
	orderColumns    = []string{"order_number", "total_price", "subtotal_price", "total_tax", "financial_status", "fulfillment_status", "order_date", "customer_id", "updated_at"}
)

// SaveOrderOption adjusts how SaveOrder writes the order row.
type SaveOrderOption func(columns []string) []string

// KeepOrderDate leaves the order_date of an existing row untouched, so the
// order's OrderDate is only written when the row is first inserted.
func KeepOrderDate() SaveOrderOption {
	return func(columns []string) []string {
		out := make([]string, 0, len(columns))
		for _, c := range columns {
			if c != "order_date" {
				out = append(out, c)
			}
		}
		return out
	}
}

// upsert inserts row or overwrites columns of the row sharing its
// (tenant_id, external_id), then reloads the surviving primary key into id.
func upsert(db *gorm.DB, row, model any, columns []string, tenantID, externalID string, id *string) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
	if err != nil {
		return err
	}

	// row still carries the id generated for the insert; query a blank model.
	var ids []string
	err = db.Model(model).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	*id = ids[0]
	return nil
}

// UpsertCustomer creates or fully overwrites the customer keyed by
// (TenantID, ExternalID). On return c.ID holds the stored id.
func (s *Store) UpsertCustomer(ctx context.Context, c *Customer) error {
	if err := upsert(s.db.WithContext(ctx), c, &Customer{}, customerColumns, c.TenantID, c.ExternalID, &c.ID); err != nil {
		return fmt.Errorf("failed to upsert customer %s: %w", c.ExternalID, err)
	}
	return nil
}

// UpsertProduct creates or fully overwrites the product keyed by
// (TenantID, ExternalID). On return p.ID holds the stored id.
func (s *Store) UpsertProduct(ctx context.Context, p *Product) error {
	if err := upsert(s.db.WithContext(ctx), p, &Product{}, productColumns, p.TenantID, p.ExternalID, &p.ID); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ExternalID, err)
	}
	return nil
}

// SaveOrder upserts the order and replaces all of its items in one transaction.
func (s *Store) SaveOrder(ctx context.Context, o *Order, items []OrderItem, opts ...SaveOrderOption) error {
	columns := orderColumns
	for _, opt := range opts {
		columns = opt(columns)
	}

	// Items are written explicitly below, never through the association.
	o.Items = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, o, &Order{}, columns, o.TenantID, o.ExternalID, &o.ID); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&OrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = ""
			items[i].TenantID = o.TenantID
			items[i].OrderID = o.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", o.ExternalID, err)
	}
	o.Items = items
	return nil
}

// LocalID returns the local id of the row of model keyed by (tenantID, externalID).
// found is false when no row exists.
func (s *Store) LocalID(ctx context.Context, model any, tenantID, externalID string) (string, bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(model).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return "", false, fmt.Errorf("failed to look up %s: %w", externalID, err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

// ListCustomers returns the customers of a tenant ordered by external id.
func (s *Store) ListCustomers(ctx context.Context, tenantID string) ([]Customer, error) {
	var out []Customer
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("external_id").Find(&out).Error
	return out, err
}

// ListProducts returns the products of a tenant ordered by external id.
func (s *Store) ListProducts(ctx context.Context, tenantID string) ([]Product, error) {
	var out []Product
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("external_id").Find(&out).Error
	return out, err
}

// ListOrders returns the orders of a tenant with their items, ordered by external id.
func (s *Store) ListOrders(ctx context.Context, tenantID string) ([]Order, error) {
	var out []Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("title") }).
		Where("tenant_id = ?", tenantID).
		Order("external_id").
		Find(&out).Error
	return out, err
}
