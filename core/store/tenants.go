package store

import (
	"context"
	"fmt"
	"strings"
)

// CreateTenant inserts a new tenant.
func (s *Store) CreateTenant(ctx context.Context, t *Tenant) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	t.ShopDomain = strings.ToLower(strings.TrimSpace(t.ShopDomain))
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// FindTenant loads a tenant by id.
func (s *Store) FindTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// FindTenantByEmail loads a tenant by its login email.
func (s *Store) FindTenantByEmail(ctx context.Context, email string) (*Tenant, error) {
	var t Tenant
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// TenantExists reports whether the email or the shop domain is already taken.
func (s *Store) TenantExists(ctx context.Context, email, shopDomain string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Tenant{}).
		Where("email = ? OR shop_domain = ?",
			strings.ToLower(strings.TrimSpace(email)),
			strings.ToLower(strings.TrimSpace(shopDomain))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check tenant: %w", err)
	}
	return count > 0, nil
}

// SetAccessToken stores the platform access token of a tenant.
func (s *Store) SetAccessToken(ctx context.Context, tenantID, token string) error {
	res := s.db.WithContext(ctx).Model(&Tenant{}).
		Where("id = ?", tenantID).
		Update("access_token", token)
	if res.Error != nil {
		return fmt.Errorf("failed to update access token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
