package mapview

import (
	"context"
	"errors"
	"fmt"

	"crowdmarks/core/reconcile"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when no annotation is displayed for an ID.
var ErrNotFound = errors.New("annotation not found")

// ErrJournalDisabled is returned when anomalies are requested without a database.
var ErrJournalDisabled = errors.New("anomaly journal is not configured")

// streamBuffer is the per-subscriber mutation buffer of the live stream.
const streamBuffer = 32

// Stats describes the live map.
type Stats struct {
	reconcile.Stats
	Mode        string `json:"mode"`
	Subscribers int    `json:"subscribers"`
	Dropped     uint64 `json:"dropped"`
}

// Service keeps the displayed annotations in sync with the remote collection.
type Service struct {
	source      Source
	reconciler  *reconcile.Reconciler
	broadcaster *Broadcaster
	journal     *Journal
	sink        reconcile.Sink
	buffer      int
	logger      *zap.Logger
}

// NewService wires a reconciler to source. journal may be nil.
func NewService(source Source, cfg reconcile.Config, journal *Journal, logger *zap.Logger) (*Service, error) {
	mode, err := reconcile.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}

	sinks := reconcile.MultiSink{reconcile.NewLogSink(logger)}
	if journal != nil {
		sinks = append(sinks, journal)
	}

	b := NewBroadcaster(streamBuffer)
	return &Service{
		source:      source,
		reconciler:  reconcile.New(mode, reconcile.WithSink(sinks), reconcile.WithObserver(b)),
		broadcaster: b,
		journal:     journal,
		sink:        sinks,
		buffer:      cfg.Buffer(),
		logger:      logger,
	}, nil
}

// Start listens and reconciles until ctx is cancelled or the listener fails.
// Events still buffered at cancellation are not applied; the last reached
// annotations remain readable afterwards.
func (s *Service) Start(ctx context.Context) error {
	defer s.broadcaster.Close()

	events := make(chan reconcile.Event, s.buffer)

	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		return s.source.Subscribe(ctx, events, s.sink)
	})
	g.Go(func() error {
		err := s.reconciler.Run(ctx, events)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	s.logger.Info("Map sync started", zap.String("mode", s.reconciler.Mode().String()))
	err := g.Wait()
	s.logger.Info("Map sync stopped", zap.Int("annotations", s.reconciler.Len()))
	if err != nil {
		return fmt.Errorf("map sync: %w", err)
	}
	return nil
}

// Observe subscribes an observer to committed mutations.
func (s *Service) Observe(o reconcile.Observer) {
	s.reconciler.Subscribe(o)
}

// Annotations returns the displayed annotations passing f, with the version they reflect.
func (s *Service) Annotations(f Filter) ([]reconcile.Annotation, uint64) {
	all, version := s.reconciler.SnapshotAt()
	return f.Apply(all), version
}

// Annotation returns the annotation displayed for a document ID.
func (s *Service) Annotation(id string) (reconcile.Annotation, error) {
	a, ok := s.reconciler.Get(id)
	if !ok {
		return reconcile.Annotation{}, ErrNotFound
	}
	return a, nil
}

// GeoJSON renders the filtered annotations as a FeatureCollection of points.
func (s *Service) GeoJSON(f Filter) ([]byte, error) {
	anns, _ := s.Annotations(f)
	return FeatureCollection(anns).MarshalJSON()
}

// FeatureCollection converts annotations to GeoJSON features.
func FeatureCollection(anns []reconcile.Annotation) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range anns {
		feat := geojson.NewFeature(a.Coordinate.Point())
		if a.ID != "" {
			feat.ID = a.ID
		}
		feat.Properties["title"] = a.Title
		feat.Properties["subtitle"] = a.Subtitle
		if a.ImageRef != "" {
			feat.Properties["imageRef"] = a.ImageRef
		}
		fc.Append(feat)
	}
	return fc
}

// Stream subscribes to live mutations. Call cancel when done.
func (s *Service) Stream() (<-chan reconcile.Mutation, func()) {
	return s.broadcaster.Subscribe()
}

// Anomalies returns recently journaled anomalies.
func (s *Service) Anomalies(ctx context.Context, limit int) ([]AnomalyEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.Recent(ctx, limit)
}

// Stats returns reconciler and stream counters.
func (s *Service) Stats() Stats {
	return Stats{
		Stats:       s.reconciler.Stats(),
		Mode:        s.reconciler.Mode().String(),
		Subscribers: s.broadcaster.Subscribers(),
		Dropped:     s.broadcaster.Dropped(),
	}
}
