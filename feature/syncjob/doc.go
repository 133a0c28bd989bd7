// Package syncjob runs tenant syncs and exposes them over HTTP.
//
// A sync is serialized per tenant twice: concurrent requests in one process
// join the in-flight run through singleflight, and the core/lock Locker
// (local or redis) rejects a run held by another process with
// ErrSyncInProgress. Each run is recorded as a store.SyncRun, counted in
// metrics and, when object storage is enabled, archived as JSON under
// reports/<tenant>/<run>.json.
//
// # HTTP Endpoints
//
//   - POST /api/shopify/connect : Stores the shop access token.
//   - POST /api/shopify/sync : Runs a sync. Errors map to 400 (not connected),
//     409 (in progress), 422 (malformed record), 502 (upstream) and 504 (transport).
//   - GET /api/shopify/sync/runs : Lists recent runs (?limit=20).
//   - GET /api/shopify/sync/reports : Lists archived reports.
//   - GET /api/shopify/sync/runs/:id/report : Downloads one archived report.
package syncjob
