// Package store persists tenants, their synced commerce data and sync runs
// with GORM.
//
// Every synced row is keyed by (tenant_id, external_id) and primary keys are
// UUID strings. UpsertCustomer, UpsertProduct and SaveOrder overwrite a row
// in place when the key already exists, so repeating a sync never duplicates
// data. SaveOrder replaces the order's line items in the same transaction.
//
// Reads are always scoped by tenant. Not-found lookups return ErrNotFound.
//
// The same models run on MySQL, PostgreSQL and SQLite (used by the tests).
// Timestamps are written in UTC.
package store
