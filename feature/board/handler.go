package board

import (
	"errors"

	"crowdmarks/core/logger"
	"crowdmarks/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PostRequest is the body of a new message.
type PostRequest struct {
	Text string `json:"text"`
}

// Handler handles HTTP requests for the board.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the board routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/board")
	group.Get("/messages", h.HandleList)
	group.Post("/messages", h.HandlePost)
}

// HandleList lists messages.
// @Summary List Messages
// @Description Returns board messages ordered by server timestamp, oldest first.
// @Tags board
// @Produce json
// @Param limit query int false "Only the newest N messages"
// @Success 200 {array} Message
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /board/messages [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	msgs, err := h.service.List(c.Context(), utils.ToInt(c.Query("limit")))
	if err != nil {
		l.Error("Message listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(msgs)
}

// HandlePost posts a message.
// @Summary Post Message
// @Description Posts a message to the board.
// @Tags board
// @Accept json
// @Produce json
// @Param message body PostRequest true "Message"
// @Success 201 {object} map[string]string "Message ID"
// @Failure 400 {object} map[string]string "Invalid message"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /board/messages [post]
func (h *Handler) HandlePost(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	id, err := h.service.Post(c.Context(), req.Text)
	if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMessageTooLong) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Message post failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}
