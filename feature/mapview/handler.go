package mapview

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crowdmarks/core/logger"
	"crowdmarks/core/reconcile"
	"crowdmarks/core/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	defaultAnomalyLimit = 50
	maxAnomalyLimit     = 500
	keepAliveInterval   = 15 * time.Second
)

// AnnotationList is the response of the annotation listing.
type AnnotationList struct {
	Version     uint64                 `json:"version"`
	Count       int                    `json:"count"`
	Annotations []reconcile.Annotation `json:"annotations"`
}

// Handler serves the live map over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the map routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/map")
	group.Get("/annotations", h.HandleList)
	group.Get("/annotations/:id", h.HandleGet)
	group.Get("/geojson", h.HandleGeoJSON)
	group.Get("/stream", h.HandleStream)
	group.Get("/anomalies", h.HandleAnomalies)
	group.Get("/stats", h.HandleStats)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	return ParseFilter(c.Query("bbox"), c.Query("lat"), c.Query("lon"), c.Query("radius"))
}

// HandleList lists displayed annotations.
// @Summary List Annotations
// @Description Returns the displayed annotations, optionally restricted to a bounding box or a radius around a point.
// @Tags map
// @Produce json
// @Param bbox query string false "minLon,minLat,maxLon,maxLat"
// @Param lat query number false "Center latitude"
// @Param lon query number false "Center longitude"
// @Param radius query number false "Radius in meters"
// @Success 200 {object} AnnotationList
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /map/annotations [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	anns, version := h.service.Annotations(f)
	return c.JSON(AnnotationList{Version: version, Count: len(anns), Annotations: anns})
}

// HandleGet returns one annotation.
// @Summary Get Annotation
// @Description Returns the annotation displayed for a pin document ID.
// @Tags map
// @Produce json
// @Param id path string true "Pin document ID"
// @Success 200 {object} reconcile.Annotation
// @Failure 404 {object} map[string]string "Not Found"
// @Router /map/annotations/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	a, err := h.service.Annotation(c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(a)
}

// HandleGeoJSON renders annotations as GeoJSON.
// @Summary Annotations as GeoJSON
// @Description Returns the displayed annotations as a GeoJSON FeatureCollection of points.
// @Tags map
// @Produce json
// @Param bbox query string false "minLon,minLat,maxLon,maxLat"
// @Param lat query number false "Center latitude"
// @Param lon query number false "Center longitude"
// @Param radius query number false "Radius in meters"
// @Success 200 {object} map[string]interface{} "FeatureCollection"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /map/geojson [get]
func (h *Handler) HandleGeoJSON(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	f, err := parseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	body, err := h.service.GeoJSON(f)
	if err != nil {
		l.Error("GeoJSON encoding failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(body)
}

// HandleStream streams mutations as server-sent events.
// @Summary Live Mutation Stream
// @Description Server-sent events: one "snapshot" event with the current annotations, then one "mutation" event per committed change.
// @Tags map
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /map/stream [get]
func (h *Handler) HandleStream(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	// Subscribe before the snapshot so nothing falls between the two.
	mutations, cancel := h.service.Stream()
	anns, version := h.service.Annotations(Filter{})

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	l.Info("Map stream opened", zap.Uint64("version", version))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		snapshot := AnnotationList{Version: version, Count: len(anns), Annotations: anns}
		if err := writeEvent(w, "snapshot", snapshot); err != nil {
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case m, ok := <-mutations:
				if !ok {
					return
				}
				if m.Seq <= version {
					continue
				}
				if err := writeEvent(w, "mutation", m); err != nil {
					l.Debug("Map stream closed", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

// HandleAnomalies lists journaled anomalies.
// @Summary Recent Sync Anomalies
// @Description Lists the most recent anomalies recorded by the map sync, newest first.
// @Tags map
// @Produce json
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Journal not configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /map/anomalies [get]
func (h *Handler) HandleAnomalies(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := utils.ToInt(c.Query("limit"))
	if limit <= 0 {
		limit = defaultAnomalyLimit
	}
	if limit > maxAnomalyLimit {
		limit = maxAnomalyLimit
	}

	entries, err := h.service.Anomalies(c.Context(), limit)
	if errors.Is(err, ErrJournalDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Anomaly listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"count":     len(entries),
		"anomalies": entries,
	})
}

// HandleStats returns sync counters.
// @Summary Map Sync Stats
// @Description Reconciler counters, match mode and live stream statistics.
// @Tags map
// @Produce json
// @Success 200 {object} Stats
// @Router /map/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}
