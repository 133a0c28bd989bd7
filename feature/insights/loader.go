package insights

import (
	"commerce-sync/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Insights feature.
func NewFeature(s *store.Store, protect fiber.Handler, logger *zap.Logger) *Feature {
	svc := NewService(s, logger)
	return &Feature{service: svc, handler: NewHandler(svc, protect)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "insights"
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
