package reconcile

import (
	"context"
	"strconv"
	"time"

	"commerce-sync/core/store"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

// Reconciler maps platform records onto local rows and upserts them by
// (tenant, external id). Every run overwrites all mapped fields.
type Reconciler struct {
	store    *store.Store
	resolver *Resolver
	now      func() time.Time
}

// NewReconciler creates a reconciler writing to s and resolving references through r.
func NewReconciler(s *store.Store, r *Resolver) *Reconciler {
	return &Reconciler{store: s, resolver: r, now: time.Now}
}

// ReconcileCustomer upserts one customer.
func (r *Reconciler) ReconcileCustomer(ctx context.Context, tenantID string, c goshopify.Customer) (*store.Customer, error) {
	if c.Id == 0 {
		return nil, &MalformedRecordError{Kind: KindCustomer, Reason: "missing id"}
	}

	row := &store.Customer{
		TenantID:    tenantID,
		ExternalID:  externalID(c.Id),
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		TotalSpent:  amount(c.TotalSpent),
		OrdersCount: c.OrdersCount,
	}
	if err := r.store.UpsertCustomer(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// ReconcileProduct upserts one product from its first variant and first image.
func (r *Reconciler) ReconcileProduct(ctx context.Context, tenantID string, p goshopify.Product) (*store.Product, error) {
	if p.Id == 0 {
		return nil, &MalformedRecordError{Kind: KindProduct, Reason: "missing id"}
	}
	if len(p.Variants) == 0 {
		return nil, &MalformedRecordError{Kind: KindProduct, ExternalID: externalID(p.Id), Reason: "product has no variants"}
	}

	variant := p.Variants[0]
	row := &store.Product{
		TenantID:     tenantID,
		ExternalID:   externalID(p.Id),
		Title:        p.Title,
		Description:  p.BodyHTML,
		Price:        amount(variant.Price),
		InventoryQty: variant.InventoryQuantity,
	}
	if variant.CompareAtPrice != nil {
		row.CompareAtPrice = decimal.NewNullDecimal(*variant.CompareAtPrice)
	}
	if len(p.Images) > 0 && p.Images[0].Src != "" {
		src := p.Images[0].Src
		row.ImageURL = &src
	}

	if err := r.store.UpsertProduct(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// ReconcileOrder upserts one order with a freshly resolved customer reference
// and replaces its line items, resolving each item's product.
func (r *Reconciler) ReconcileOrder(ctx context.Context, tenantID string, o goshopify.Order) (*store.Order, error) {
	if o.Id == 0 {
		return nil, &MalformedRecordError{Kind: KindOrder, Reason: "missing id"}
	}

	row := &store.Order{
		TenantID:          tenantID,
		ExternalID:        externalID(o.Id),
		OrderNumber:       o.OrderNumber,
		TotalPrice:        amount(o.TotalPrice),
		SubtotalPrice:     amount(o.SubtotalPrice),
		TotalTax:          amount(o.TotalTax),
		FinancialStatus:   string(o.FinancialStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
	}
	// Without an upstream date the first sync stamps the order and later
	// syncs keep that stamp.
	var opts []store.SaveOrderOption
	if o.CreatedAt != nil {
		row.OrderDate = o.CreatedAt.UTC()
	} else {
		row.OrderDate = r.now().UTC()
		opts = append(opts, store.KeepOrderDate())
	}

	if o.Customer != nil && o.Customer.Id != 0 {
		ref, err := r.resolver.ResolveRef(ctx, tenantID, KindCustomer, externalID(o.Customer.Id))
		if err != nil {
			return nil, err
		}
		row.CustomerID = ref
	}

	items := make([]store.OrderItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		item := store.OrderItem{
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    amount(li.Price),
		}
		if li.ProductId != 0 {
			ref, err := r.resolver.ResolveRef(ctx, tenantID, KindProduct, externalID(li.ProductId))
			if err != nil {
				return nil, err
			}
			item.ProductID = ref
		}
		items = append(items, item)
	}

	if err := r.store.SaveOrder(ctx, row, items, opts...); err != nil {
		return nil, err
	}
	return row, nil
}

func externalID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}

// amount treats an absent amount as zero.
func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
