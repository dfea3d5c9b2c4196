package pins

import (
	"crowdmarks/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new pins feature. Photos go to bucket in client.
func NewFeature(store Store, client storage.Client, cfg storage.Config, logger *zap.Logger) *Feature {
	images := NewImages(client, cfg.Bucket, cfg.PresignExpiry())
	svc := NewService(store, images, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "pins"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.store != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the underlying pin service.
func (f *Feature) Service() *Service {
	return f.service
}
