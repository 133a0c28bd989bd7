package syncjob

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Sync feature around an existing service, which the
// CLI shares.
func NewFeature(svc *Service, protect fiber.Handler) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc, protect)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "syncjob"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
