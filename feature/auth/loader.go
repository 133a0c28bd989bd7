package auth

import (
	"commerce-sync/core/store"
	"commerce-sync/core/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Auth feature.
func NewFeature(s *store.Store, tokens *token.Manager, protect fiber.Handler, logger *zap.Logger) *Feature {
	svc := NewService(s, tokens, logger)
	h := NewHandler(svc, protect)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "auth"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
