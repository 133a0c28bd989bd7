// Package lock provides per-key mutual exclusion used to keep a single sync
// running per tenant.
//
// The local driver guards keys inside one process. The redis driver uses
// github.com/bsm/redislock so that every replica of the service sees the same
// lock; held redis locks are refreshed until released.
//
// Acquire never blocks: a key that is already held fails with ErrHeld. It
// also returns a context for the guarded work; when a redis lock cannot be
// refreshed that context is cancelled with cause ErrLost.
package lock
