package reconcile

import (
	"context"
	"errors"
	"fmt"

	"commerce-sync/core/store"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"go.uber.org/zap"
)

// Orchestrator runs the customer, product and order passes of a tenant's sync
// in that order. It is not safe to run two jobs for the same tenant at once;
// callers serialize per tenant.
type Orchestrator struct {
	source     Source
	store      *store.Store
	reconciler *Reconciler
	opts       Options
	logger     *zap.Logger
}

// NewOrchestrator wires an orchestrator reading from source and writing to s.
func NewOrchestrator(source Source, s *store.Store, opts Options, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		source:     source,
		store:      s,
		reconciler: NewReconciler(s, NewResolver(s)),
		opts:       opts,
		logger:     logger,
	}
}

// job is the mutable state of one Run.
type job struct {
	tenantID string
	state    State
	report   Report
	observer Observer
	logger   *zap.Logger
}

func (j *job) transition(to State) {
	from := j.state
	j.state = to
	j.report.State = to
	j.logger.Debug("Sync state changed", zap.String("from", string(from)), zap.String("to", string(to)))
	if j.observer != nil {
		j.observer.Transition(j.tenantID, from, to)
	}
}

// fail moves the job to Failed and wraps err with the stage it happened in.
func (j *job) fail(err error) error {
	stage := j.state
	j.transition(StateFailed)
	return &StageError{Stage: stage, Err: err}
}

// Run synchronizes one tenant. On failure the returned report holds the
// counts reached so far and the error is a *StageError.
func (o *Orchestrator) Run(ctx context.Context, tenantID string) (*Report, error) {
	j := &job{
		tenantID: tenantID,
		state:    StateNotStarted,
		observer: o.opts.Observer,
		logger:   o.logger.With(zap.String("tenant_id", tenantID)),
	}
	j.report.State = StateNotStarted

	tenant, err := o.store.FindTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &j.report, j.fail(fmt.Errorf("tenant %s: %w", tenantID, err))
		}
		return &j.report, j.fail(err)
	}
	if !tenant.Connected() {
		return &j.report, j.fail(&NotConnectedError{TenantID: tenantID})
	}
	conn := Connection{ShopDomain: tenant.ShopDomain, AccessToken: tenant.AccessToken}

	j.logger.Info("Starting sync", zap.String("shop", tenant.ShopDomain))

	err = runStage(ctx, o, j, conn, StateFetchingCustomers, StateReconcilingCustomers, KindCustomer,
		o.source.ListCustomers,
		func(ctx context.Context, c goshopify.Customer) error {
			_, err := o.reconciler.ReconcileCustomer(ctx, tenantID, c)
			return err
		},
		&j.report.Customers)
	if err != nil {
		return &j.report, err
	}

	err = runStage(ctx, o, j, conn, StateFetchingProducts, StateReconcilingProducts, KindProduct,
		o.source.ListProducts,
		func(ctx context.Context, p goshopify.Product) error {
			_, err := o.reconciler.ReconcileProduct(ctx, tenantID, p)
			return err
		},
		&j.report.Products)
	if err != nil {
		return &j.report, err
	}

	err = runStage(ctx, o, j, conn, StateFetchingOrders, StateReconcilingOrders, KindOrder,
		o.source.ListOrders,
		func(ctx context.Context, ord goshopify.Order) error {
			_, err := o.reconciler.ReconcileOrder(ctx, tenantID, ord)
			return err
		},
		&j.report.Orders)
	if err != nil {
		return &j.report, err
	}

	j.transition(StateCompleted)
	j.logger.Info("Sync completed",
		zap.Int("customers", j.report.Customers),
		zap.Int("products", j.report.Products),
		zap.Int("orders", j.report.Orders),
		zap.Int("skipped", j.report.Skipped),
	)
	return &j.report, nil
}

// runStage pages through one resource collection, reconciling every record
// of a page before fetching the next. Cancellation is honoured before each
// fetch, never between the writes of a single record.
func runStage[T any](
	ctx context.Context,
	o *Orchestrator,
	j *job,
	conn Connection,
	fetching, reconciling State,
	kind Kind,
	list func(context.Context, Connection, string) ([]T, string, error),
	reconcile func(context.Context, T) error,
	count *int,
) error {
	cursor := ""
	for page := 1; ; page++ {
		j.transition(fetching)
		if err := ctx.Err(); err != nil {
			return j.fail(err)
		}

		records, next, err := list(ctx, conn, cursor)
		if err != nil {
			return j.fail(err)
		}
		j.logger.Debug("Fetched page", zap.String("kind", string(kind)), zap.Int("page", page), zap.Int("records", len(records)))

		j.transition(reconciling)
		for _, rec := range records {
			if err := reconcile(ctx, rec); err != nil {
				if o.opts.SkipMalformed && IsMalformed(err) {
					j.report.Skipped++
					j.logger.Warn("Skipping malformed record", zap.String("kind", string(kind)), zap.Error(err))
					if j.observer != nil {
						j.observer.Skipped(j.tenantID, kind, err)
					}
					continue
				}
				return j.fail(err)
			}
			*count++
			if j.observer != nil {
				j.observer.Reconciled(j.tenantID, kind)
			}
		}

		if next == "" {
			return nil
		}
		cursor = next
	}
}
