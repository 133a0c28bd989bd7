package reconcile

import (
	"context"
	"fmt"

	"commerce-sync/core/store"
)

// Resolver finds local rows by the external id they were reconciled from.
type Resolver struct {
	store *store.Store
}

// NewResolver creates a resolver over s.
func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the local id of the tenant's row of kind with externalID.
// A missing row is not an error: found is false and id is empty.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, kind Kind, externalID string) (string, bool, error) {
	if externalID == "" {
		return "", false, nil
	}

	var model any
	switch kind {
	case KindCustomer:
		model = &store.Customer{}
	case KindProduct:
		model = &store.Product{}
	default:
		return "", false, fmt.Errorf("cannot resolve references to %s", kind)
	}

	return r.store.LocalID(ctx, model, tenantID, externalID)
}

// ResolveRef is Resolve returning a nullable reference.
func (r *Resolver) ResolveRef(ctx context.Context, tenantID string, kind Kind, externalID string) (*string, error) {
	id, found, err := r.Resolve(ctx, tenantID, kind, externalID)
	if err != nil || !found {
		return nil, err
	}
	return &id, nil
}
