package reconcile

import (
	"context"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// Kind is a reconciled entity kind.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindProduct  Kind = "product"
	KindOrder    Kind = "order"
)

// State is a step of the sync state machine.
type State string

const (
	StateNotStarted           State = "NotStarted"
	StateFetchingCustomers    State = "FetchingCustomers"
	StateReconcilingCustomers State = "ReconcilingCustomers"
	StateFetchingProducts     State = "FetchingProducts"
	StateReconcilingProducts  State = "ReconcilingProducts"
	StateFetchingOrders       State = "FetchingOrders"
	StateReconcilingOrders    State = "ReconcilingOrders"
	StateCompleted            State = "Completed"
	StateFailed               State = "Failed"
)

// Terminal reports whether no transition can leave s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Connection is the credential pair of a tenant's shop.
type Connection struct {
	ShopDomain  string
	AccessToken string
}

// Source reads one page of a resource collection per call. An empty next
// cursor means the collection is exhausted.
type Source interface {
	ListCustomers(ctx context.Context, conn Connection, cursor string) ([]goshopify.Customer, string, error)
	ListProducts(ctx context.Context, conn Connection, cursor string) ([]goshopify.Product, string, error)
	ListOrders(ctx context.Context, conn Connection, cursor string) ([]goshopify.Order, string, error)
}

// Report counts the records reconciled by a job.
type Report struct {
	Customers int   `json:"customers"`
	Products  int   `json:"products"`
	Orders    int   `json:"orders"`
	Skipped   int   `json:"skipped"`
	State     State `json:"state"`
}

// Observer receives progress notifications from the orchestrator.
type Observer interface {
	Transition(tenantID string, from, to State)
	Reconciled(tenantID string, kind Kind)
	Skipped(tenantID string, kind Kind, err error)
}

// Options tune an Orchestrator.
type Options struct {
	// SkipMalformed continues past malformed records instead of failing the job.
	SkipMalformed bool
	// Observer is notified of transitions and record outcomes. May be nil.
	Observer Observer
}

// DefaultOptions skips malformed records.
func DefaultOptions() Options {
	return Options{SkipMalformed: true}
}

// Config holds the sync settings loaded from the environment.
type Config struct {
	// SkipMalformed continues past malformed records.
	SkipMalformed bool `mapstructure:"skip_malformed" default:"true"`
	// TimeoutMinutes bounds a whole sync job. Zero means no limit.
	TimeoutMinutes int `mapstructure:"timeout_minutes" default:"30"`
}

// Options converts the configuration, attaching observer.
func (c Config) Options(observer Observer) Options {
	return Options{SkipMalformed: c.SkipMalformed, Observer: observer}
}
