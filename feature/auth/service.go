package auth

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"commerce-sync/core/store"
	"commerce-sync/core/token"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrTenantExists is returned when the email or shop domain is already registered.
	ErrTenantExists = errors.New("tenant already exists")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactive is returned when a deactivated tenant logs in.
	ErrInactive = errors.New("account is inactive")
)

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+\.myshopify\.com$`)

// ValidationError maps each invalid field to a readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// RegisterRequest is the payload of a registration. AccessToken is optional;
// when present the tenant is connected and can sync right away.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	ShopDomain  string `json:"shop_domain" validate:"required,myshopify"`
	AccessToken string `json:"access_token,omitempty"`

	// camelCase spellings sent by older clients.
	ShopDomainCamel  string `json:"shopDomain,omitempty" validate:"-" swaggerignore:"true"`
	AccessTokenCamel string `json:"accessToken,omitempty" validate:"-" swaggerignore:"true"`
}

func (r *RegisterRequest) normalize() {
	if r.ShopDomain == "" {
		r.ShopDomain = r.ShopDomainCamel
	}
	if r.AccessToken == "" {
		r.AccessToken = r.AccessTokenCamel
	}
	r.ShopDomainCamel, r.AccessTokenCamel = "", ""
	r.Email = strings.TrimSpace(r.Email)
	r.ShopDomain = strings.TrimSpace(r.ShopDomain)
	r.AccessToken = strings.TrimSpace(r.AccessToken)
}

// LoginRequest is the payload of a login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile is the public view of a tenant.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	ShopDomain string    `json:"shop_domain"`
	IsActive   bool      `json:"is_active"`
	Connected  bool      `json:"connected"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is returned by Register and Login.
type Session struct {
	Token  string  `json:"token"`
	Tenant Profile `json:"tenant"`
}

// Service registers and authenticates tenants.
type Service struct {
	store    *store.Store
	tokens   *token.Manager
	validate *validator.Validate
	hashCost int
	logger   *zap.Logger
}

// NewService creates a new auth service.
func NewService(s *store.Store, tokens *token.Manager, logger *zap.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("myshopify", func(fl validator.FieldLevel) bool {
		return shopDomainPattern.MatchString(fl.Field().String())
	})
	return &Service{
		store:    s,
		tokens:   tokens,
		validate: v,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
}

// Register creates a tenant and signs a token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.normalize()
	if err := s.check(req); err != nil {
		return nil, err
	}

	exists, err := s.store.TenantExists(ctx, req.Email, req.ShopDomain)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTenantExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant := &store.Tenant{
		Email:       req.Email,
		Password:    string(hash),
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		IsActive:    true,
	}
	if err := s.store.CreateTenant(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID),
		zap.String("shop", tenant.ShopDomain),
		zap.Bool("connected", tenant.Connected()))
	return s.session(tenant)
}

// Login verifies the credentials and signs a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	tenant, err := s.store.FindTenantByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tenant.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !tenant.IsActive {
		return nil, ErrInactive
	}

	return s.session(tenant)
}

// Me returns the profile of the tenant.
func (s *Service) Me(tenant *store.Tenant) Profile {
	return profileOf(tenant)
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "myshopify":
		return "must be a valid myshopify.com domain"
	default:
		return "is invalid"
	}
}

func (s *Service) session(tenant *store.Tenant) (*Session, error) {
	raw, err := s.tokens.Issue(tenant.ID, tenant.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: raw, Tenant: profileOf(tenant)}, nil
}

func profileOf(t *store.Tenant) Profile {
	return Profile{
		ID:         t.ID,
		Email:      t.Email,
		ShopDomain: t.ShopDomain,
		IsActive:   t.IsActive,
		Connected:  t.Connected(),
		CreatedAt:  t.CreatedAt,
	}
}
