package mapview

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"crowdmarks/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, journal *Journal, events ...reconcile.Event) (*fiber.App, *Service) {
	svc := newTestService(t, &fakeSource{events: events}, journal)
	require.NoError(t, svc.Start(context.Background()))

	app := fiber.New()
	feature := NewFeature(svc)
	require.NoError(t, feature.Load(app))
	return app, svc
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestHandleList(t *testing.T) {
	app, _ := setupTestApp(t, nil,
		pinEvent(reconcile.Added, "a", "Fountain", 42.36, -71.06),
		pinEvent(reconcile.Added, "b", "Statue", 48.85, 2.35),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/map/annotations", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var list AnnotationList
	decode(t, resp.Body, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, uint64(2), list.Version)
	assert.Equal(t, "a", list.Annotations[0].ID)

	resp, err = app.Test(httptest.NewRequest("GET", "/map/annotations?lat=48.85&lon=2.35&radius=100", nil))
	require.NoError(t, err)
	decode(t, resp.Body, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Statue", list.Annotations[0].Title)
}

func TestHandleList_InvalidFilter(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/map/annotations?bbox=1,2", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleGet(t *testing.T) {
	app, _ := setupTestApp(t, nil, pinEvent(reconcile.Added, "a", "Fountain", 42.36, -71.06))

	resp, err := app.Test(httptest.NewRequest("GET", "/map/annotations/a", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var a reconcile.Annotation
	decode(t, resp.Body, &a)
	assert.Equal(t, "Fountain", a.Title)
	assert.Equal(t, 42.36, a.Coordinate.Latitude)

	resp, err = app.Test(httptest.NewRequest("GET", "/map/annotations/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleGeoJSON(t *testing.T) {
	app, _ := setupTestApp(t, nil, pinEvent(reconcile.Added, "a", "Fountain", 42.36, -71.06))

	resp, err := app.Test(httptest.NewRequest("GET", "/map/geojson", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	var body map[string]any
	decode(t, resp.Body, &body)
	assert.Equal(t, "FeatureCollection", body["type"])
	assert.Len(t, body["features"], 1)
}

func TestHandleStream_SnapshotThenClose(t *testing.T) {
	// The service has already stopped, so the stream ends after the snapshot.
	app, _ := setupTestApp(t, nil, pinEvent(reconcile.Added, "a", "Fountain", 42.36, -71.06))

	resp, err := app.Test(httptest.NewRequest("GET", "/map/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.True(t, strings.HasPrefix(body, "event: snapshot\ndata: "))
	assert.Contains(t, body, `"version":1`)
	assert.Contains(t, body, `"title":"Fountain"`)
}

func TestHandleAnomalies(t *testing.T) {
	journal := setupSQLiteJournal(t)
	app, _ := setupTestApp(t, journal, pinEvent(reconcile.Removed, "ghost", "Ghost", 1, 1))

	resp, err := app.Test(httptest.NewRequest("GET", "/map/anomalies?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Count     int            `json:"count"`
		Anomalies []AnomalyEntry `json:"anomalies"`
	}
	decode(t, resp.Body, &body)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "no_matching_annotation", body.Anomalies[0].Kind)
	assert.Equal(t, "ghost", body.Anomalies[0].DocumentID)
}

func TestHandleAnomalies_Disabled(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/map/anomalies", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestHandleStats(t *testing.T) {
	app, _ := setupTestApp(t, nil,
		pinEvent(reconcile.Added, "a", "Fountain", 42.36, -71.06),
		pinEvent(reconcile.Modified, "ghost", "Ghost", 1, 1),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/map/stats", nil))
	require.NoError(t, err)

	var body map[string]any
	decode(t, resp.Body, &body)
	assert.Equal(t, "id", body["mode"])
	assert.Equal(t, float64(1), body["size"])
	assert.Equal(t, float64(1), body["unmatched"])
	assert.Equal(t, float64(1), body["applied"])
}

func TestFeature(t *testing.T) {
	svc := newTestService(t, &fakeSource{}, nil)
	f := NewFeature(svc)

	assert.Equal(t, "map", f.Name())
	assert.True(t, f.IsEnabled())
	assert.Same(t, svc, f.Service())
	assert.False(t, NewFeature(nil).IsEnabled())
}
