package pins

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"crowdmarks/core/reconcile"

	"go.uber.org/zap"
)

// ErrInvalidSubmission is returned when a submission fails validation.
var ErrInvalidSubmission = errors.New("invalid submission")

// Submission is a new pin as entered by a user.
type Submission struct {
	Name        string
	Description string
	// Image holds the photo bytes, empty when none was picked.
	Image       []byte
	ContentType string
	Latitude    float64
	Longitude   float64
}

// Pin is a stored pin as returned to the submitter.
type Pin struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageRef    string  `json:"imageRef,omitempty"`
}

// Validate trims the text fields and checks the submission.
func (s *Submission) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)

	var problems []string
	if s.Name == "" {
		problems = append(problems, "name is required")
	}
	if s.Description == "" {
		problems = append(problems, "description is required")
	}
	if !within(s.Latitude, 90) {
		problems = append(problems, "latitude must be within [-90, 90]")
	}
	if !within(s.Longitude, 180) {
		problems = append(problems, "longitude must be within [-180, 180]")
	}
	if len(s.Image) > 0 {
		ct := s.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(s.Image)
			s.ContentType = ct
		}
		if !strings.HasPrefix(ct, "image/") {
			problems = append(problems, "image must be an image, got "+ct)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(problems, "; "))
	}
	return nil
}

// within reports whether v is finite and in [-limit, limit]. NaN fails every
// comparison, so it is checked explicitly.
func within(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// Service handles pin submissions.
type Service struct {
	store  Store
	images *Images
	logger *zap.Logger
}

// NewService creates a new pin service.
func NewService(store Store, images *Images, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		images: images,
		logger: logger,
	}
}

// Submit validates sub, uploads its photo and writes the Pin record.
// A failed upload does not fail the submission: the pin is saved without
// an image. A failed write removes the uploaded photo again.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Pin, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	var ref string
	if len(sub.Image) > 0 {
		uploaded, err := s.images.Upload(ctx, sub.Image, sub.ContentType)
		if err != nil {
			s.logger.Warn("Image upload failed, saving pin without image", zap.Error(err))
		} else {
			ref = uploaded
		}
	}

	rec := reconcile.Record{
		Name:        sub.Name,
		Description: sub.Description,
		Coordinate:  reconcile.Coordinate{Latitude: sub.Latitude, Longitude: sub.Longitude},
		ImageRef:    ref,
	}

	id, err := s.store.Create(ctx, rec)
	if err != nil {
		if ref != "" {
			if rmErr := s.images.Remove(context.WithoutCancel(ctx), ref); rmErr != nil {
				s.logger.Warn("Failed to remove orphaned image", zap.String("ref", ref), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	s.logger.Info("Pin saved",
		zap.String("id", id),
		zap.Bool("image", ref != ""))

	return &Pin{
		ID:          id,
		Name:        rec.Name,
		Description: rec.Description,
		Latitude:    sub.Latitude,
		Longitude:   sub.Longitude,
		ImageRef:    ref,
	}, nil
}

// ImageURL resolves an image reference to a temporary download URL.
func (s *Service) ImageURL(ctx context.Context, ref string) (string, error) {
	return s.images.URL(ctx, ref)
}
