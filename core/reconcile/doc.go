// Package reconcile is the tenant-scoped sync engine. It pulls customers,
// products and orders from the commerce platform and reconciles them into the
// local store.
//
// # Components
//
//   - Source: reads one page of a resource collection (implemented by core/shopify).
//   - Reconciler: maps one platform record to a local row and upserts it by
//     (tenant_id, external_id). Orders are saved together with a full
//     replacement of their line items, so re-running a sync never duplicates items.
//   - Resolver: finds the local id of a customer or product by its external id.
//     A missing row is a normal outcome and leaves the reference empty.
//   - Orchestrator: the state machine
//
//     NotStarted → FetchingCustomers → ReconcilingCustomers → FetchingProducts →
//     ReconcilingProducts → FetchingOrders → ReconcilingOrders → Completed
//
//     with Failed reachable from every non-terminal state.
//
// # Failure model
//
// Transport, upstream and store errors abort the job at once and are returned
// wrapped in a *StageError. Rows already written stay written. Malformed records
// are skipped and counted by default (Options.SkipMalformed).
//
// # Concurrency
//
// A job is strictly sequential. Jobs for different tenants may run concurrently,
// but two jobs for the same tenant must be serialized by the caller.
package reconcile
