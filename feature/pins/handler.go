package pins

import (
	"errors"
	"io"

	"crowdmarks/core/logger"
	"crowdmarks/core/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for pin submission.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the pin routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/pins")
	group.Post("/", h.HandleSubmit)
	group.Get("/image", h.HandleImage)
}

// HandleSubmit creates a pin.
// @Summary Submit Pin
// @Description Drops a new pin. The optional photo is uploaded to the blob store; if that upload fails the pin is saved without it.
// @Tags pins
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Pin name"
// @Param description formData string true "Pin description"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param image formData file false "Photo"
// @Success 201 {object} Pin
// @Failure 400 {object} map[string]string "Invalid submission"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /pins [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	sub, err := readSubmission(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pin, err := h.service.Submit(c.Context(), sub)
	if errors.Is(err, ErrInvalidSubmission) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Pin submission failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(pin)
}

func readSubmission(c *fiber.Ctx) (Submission, error) {
	sub := Submission{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}

	var err error
	if sub.Latitude, err = parseCoordinate(c.FormValue("latitude"), "latitude"); err != nil {
		return sub, err
	}
	if sub.Longitude, err = parseCoordinate(c.FormValue("longitude"), "longitude"); err != nil {
		return sub, err
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return sub, nil
	}
	if err != nil {
		return sub, err
	}

	f, err := fh.Open()
	if err != nil {
		return sub, err
	}
	defer f.Close()

	if sub.Image, err = io.ReadAll(f); err != nil {
		return sub, err
	}
	sub.ContentType = fh.Header.Get(fiber.HeaderContentType)
	return sub, nil
}

func parseCoordinate(raw, field string) (float64, error) {
	v, err := utils.ParseFloat(raw)
	if err != nil {
		return 0, errors.New(field + " must be a finite number")
	}
	return v, nil
}

// HandleImage redirects to a temporary download URL of a pin photo.
// @Summary Pin Photo
// @Description Redirects to a presigned download URL for the image reference stored on a pin.
// @Tags pins
// @Param ref query string true "Image reference (images/<name>.jpg)"
// @Success 302 "Redirect to the photo"
// @Failure 400 {object} map[string]string "Invalid reference"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /pins/image [get]
func (h *Handler) HandleImage(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	url, err := h.service.ImageURL(c.Context(), c.Query("ref"))
	if errors.Is(err, ErrInvalidImageRef) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Image URL failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Redirect(url, fiber.StatusFound)
}
