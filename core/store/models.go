package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base carries the UUID primary key and timestamps shared by all rows.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the row has none.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Tenant is an isolated account owning one shop connection.
type Tenant struct {
	Base
	Email       string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password    string `gorm:"size:255;not null" json:"-"`
	ShopDomain  string `gorm:"size:255;not null;uniqueIndex" json:"shop_domain"`
	AccessToken string `gorm:"size:255" json:"-"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

// Connected reports whether an access token is on file.
func (t *Tenant) Connected() bool {
	return t.AccessToken != ""
}

// Customer mirrors a platform customer.
type Customer struct {
	Base
	TenantID    string          `gorm:"size:36;not null;uniqueIndex:idx_customers_tenant_external,priority:1" json:"tenant_id"`
	ExternalID  string          `gorm:"size:64;not null;uniqueIndex:idx_customers_tenant_external,priority:2" json:"external_id"`
	Email       string          `gorm:"size:255" json:"email"`
	FirstName   string          `gorm:"size:255" json:"first_name"`
	LastName    string          `gorm:"size:255" json:"last_name"`
	Phone       string          `gorm:"size:64" json:"phone"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`
	OrdersCount int             `gorm:"not null;default:0" json:"orders_count"`
}

// Product mirrors the first variant of a platform product.
type Product struct {
	Base
	TenantID       string              `gorm:"size:36;not null;uniqueIndex:idx_products_tenant_external,priority:1" json:"tenant_id"`
	ExternalID     string              `gorm:"size:64;not null;uniqueIndex:idx_products_tenant_external,priority:2" json:"external_id"`
	Title          string              `gorm:"size:255" json:"title"`
	Description    string              `gorm:"type:text" json:"description"`
	Price          decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CompareAtPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"compare_at_price"`
	InventoryQty   int                 `gorm:"not null;default:0" json:"inventory_qty"`
	ImageURL       *string             `gorm:"size:1024" json:"image_url"`
}

// Order mirrors a platform order. CustomerID is nil when no local customer matched.
type Order struct {
	Base
	TenantID          string          `gorm:"size:36;not null;uniqueIndex:idx_orders_tenant_external,priority:1;index:idx_orders_tenant_date,priority:1" json:"tenant_id"`
	ExternalID        string          `gorm:"size:64;not null;uniqueIndex:idx_orders_tenant_external,priority:2" json:"external_id"`
	OrderNumber       int             `json:"order_number"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	SubtotalPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal_price"`
	TotalTax          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_tax"`
	FinancialStatus   string          `gorm:"size:64" json:"financial_status"`
	FulfillmentStatus string          `gorm:"size:64" json:"fulfillment_status"`
	OrderDate         time.Time       `gorm:"index:idx_orders_tenant_date,priority:2" json:"order_date"`
	CustomerID        *string         `gorm:"size:36;index" json:"customer_id"`
	Items             []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is a line of an order. ProductID is nil when no local product matched.
type OrderItem struct {
	Base
	TenantID  string          `gorm:"size:36;not null;index" json:"tenant_id"`
	OrderID   string          `gorm:"size:36;not null;index" json:"order_id"`
	ProductID *string         `gorm:"size:36;index" json:"product_id"`
	Title     string          `gorm:"size:255" json:"title"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
}

// Sync run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// SyncRun records one sync invocation for a tenant.
type SyncRun struct {
	Base
	TenantID   string     `gorm:"size:36;not null;index" json:"tenant_id"`
	Status     string     `gorm:"size:16;not null" json:"status"`
	Stage      string     `gorm:"size:32" json:"stage"`
	Customers  int        `json:"customers"`
	Products   int        `json:"products"`
	Orders     int        `json:"orders"`
	Skipped    int        `json:"skipped"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Models lists every table managed by Migrate.
func Models() []any {
	return []any{&Tenant{}, &Customer{}, &Product{}, &Order{}, &OrderItem{}, &SyncRun{}}
}
