package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Reconciler keeps a collection of Displayed Annotations in agreement with a
// remote Pin collection, driven only by forward change events.
type Reconciler struct {
	mode MatchMode
	sink Sink
	now  func() time.Time

	// writeMu serializes Apply so that mutations and their notifications
	// reach observers in event order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	items     []Annotation
	index     map[string]int
	observers []Observer
	seq       uint64

	applied   atomic.Uint64
	unmatched atomic.Uint64
	failures  atomic.Uint64
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSink sets the anomaly sink. The default discards anomalies.
func WithSink(s Sink) Option {
	return func(r *Reconciler) { r.sink = s }
}

// WithObserver subscribes an observer at construction time.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) { r.observers = append(r.observers, o) }
}

// WithClock overrides the clock used to stamp anomalies.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates an empty Reconciler.
func New(mode MatchMode, opts ...Option) *Reconciler {
	r := &Reconciler{
		mode:  mode,
		sink:  SinkFunc(func(Anomaly) {}),
		now:   time.Now,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the matching mode.
func (r *Reconciler) Mode() MatchMode { return r.mode }

// Subscribe registers an observer for subsequent mutations.
func (r *Reconciler) Subscribe(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Run applies events in arrival order until the channel closes (returns nil)
// or ctx is cancelled (returns ctx.Err()). A panic while applying one event
// is reported as ApplyFailure and the loop moves on to the next event.
func (r *Reconciler) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.safeApply(ev)
		}
	}
}

func (r *Reconciler) safeApply(ev Event) (m Mutation) {
	defer func() {
		if p := recover(); p != nil {
			r.failures.Add(1)
			r.report(Anomaly{
				Kind:  ApplyFailure,
				Event: &ev,
				Err:   fmt.Errorf("panic applying %s event: %v", ev.Kind, p),
			})
			m = Mutation{Op: OpNone}
		}
	}()
	return r.Apply(ev)
}

// Apply applies a single event and notifies observers of the resulting
// mutation before returning. Events that match nothing yield OpNone.
func (r *Reconciler) Apply(ev Event) Mutation {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	m, anomaly, observers := r.commit(ev)
	if anomaly != nil {
		if anomaly.Kind == NoMatchingAnnotation {
			r.unmatched.Add(1)
		}
		r.report(*anomaly)
	}
	if m.Op == OpNone {
		return m
	}

	r.applied.Add(1)
	for _, o := range observers {
		r.notify(o, ev, m)
	}
	return m
}

// notify delivers m to one observer. A panicking observer is reported as
// ApplyFailure and does not keep the remaining observers from seeing m.
func (r *Reconciler) notify(o Observer, ev Event, m Mutation) {
	defer func() {
		if p := recover(); p != nil {
			r.failures.Add(1)
			r.report(Anomaly{
				Kind:  ApplyFailure,
				Event: &ev,
				Err:   fmt.Errorf("panic notifying observer of %s: %v", m.Op, p),
			})
		}
	}()
	o.Observe(m)
}

// commit mutates the collection under the state lock and returns the
// observers to notify once the lock is released.
func (r *Reconciler) commit(ev Event) (Mutation, *Anomaly, []Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m Mutation
	switch ev.Kind {
	case Added:
		m = r.add(ev.Record)
	case Modified:
		m = r.modify(ev.Record)
	case Removed:
		m = r.remove(ev.Record)
	default:
		return Mutation{Op: OpNone}, &Anomaly{
			Kind:  MalformedRecord,
			Event: &ev,
			Err:   fmt.Errorf("unknown event kind %d", int(ev.Kind)),
		}, nil
	}

	if m.Op == OpNone {
		return m, &Anomaly{
			Kind:  NoMatchingAnnotation,
			Event: &ev,
			Err:   fmt.Errorf("no annotation matches %s event", ev.Kind),
		}, nil
	}

	r.seq++
	m.Seq = r.seq
	return m, nil, append([]Observer(nil), r.observers...)
}

func (r *Reconciler) add(rec Record) Mutation {
	ann := AnnotationFrom(rec)

	// A repeated Added for a displayed document is a replace under ID matching.
	if r.mode == MatchByID && rec.ID != "" {
		if i, ok := r.index[rec.ID]; ok {
			prev := r.items[i]
			r.items[i] = ann
			return Mutation{Op: OpReplace, Annotation: ann, Previous: &prev}
		}
	}

	r.items = append(r.items, ann)
	if r.mode == MatchByID && rec.ID != "" {
		r.index[rec.ID] = len(r.items) - 1
	}
	return Mutation{Op: OpInsert, Annotation: ann}
}

func (r *Reconciler) modify(rec Record) Mutation {
	i := r.find(rec)
	if i < 0 {
		return Mutation{Op: OpNone}
	}

	prev := r.items[i]
	updated := prev
	updated.Title = rec.Name
	updated.Subtitle = rec.Description
	updated.ImageRef = rec.ImageRef
	if r.mode == MatchByID && rec.ID != "" {
		// Identity no longer rides on the coordinate, so a move is just an update.
		updated.Coordinate = rec.Coordinate
	}
	r.items[i] = updated
	return Mutation{Op: OpReplace, Annotation: updated, Previous: &prev}
}

func (r *Reconciler) remove(rec Record) Mutation {
	i := r.find(rec)
	if i < 0 {
		return Mutation{Op: OpNone}
	}

	removed := r.items[i]
	r.items = append(r.items[:i], r.items[i+1:]...)
	if removed.ID != "" {
		delete(r.index, removed.ID)
	}
	for j := i; j < len(r.items); j++ {
		if id := r.items[j].ID; id != "" {
			if _, ok := r.index[id]; ok {
				r.index[id] = j
			}
		}
	}
	return Mutation{Op: OpDelete, Annotation: removed}
}

// find returns the position of the annotation matching rec, or -1.
// Records without an ID fall back to coordinate matching.
func (r *Reconciler) find(rec Record) int {
	if r.mode == MatchByID && rec.ID != "" {
		if i, ok := r.index[rec.ID]; ok {
			return i
		}
		return -1
	}
	for i, a := range r.items {
		if a.Coordinate == rec.Coordinate {
			return i
		}
	}
	return -1
}

func (r *Reconciler) report(a Anomaly) {
	if a.At.IsZero() {
		a.At = r.now()
	}
	r.sink.Report(a)
}

// Snapshot returns a copy of the displayed annotations in display order.
func (r *Reconciler) Snapshot() []Annotation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Annotation, len(r.items))
	copy(out, r.items)
	return out
}

// SnapshotAt returns the annotations together with the version they reflect.
// Mutations with a Seq above that version are not yet included.
func (r *Reconciler) SnapshotAt() ([]Annotation, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Annotation, len(r.items))
	copy(out, r.items)
	return out, r.seq
}

// Len returns the number of displayed annotations.
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Version returns the sequence number of the last committed mutation.
func (r *Reconciler) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq
}

// Get returns the annotation displayed for a document ID.
func (r *Reconciler) Get(id string) (Annotation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.index[id]; ok {
		return r.items[i], true
	}
	for _, a := range r.items {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// Stats returns the running counters.
func (r *Reconciler) Stats() Stats {
	r.mu.RLock()
	size, version := len(r.items), r.seq
	r.mu.RUnlock()
	return Stats{
		Applied:   r.applied.Load(),
		Unmatched: r.unmatched.Load(),
		Failures:  r.failures.Load(),
		Size:      size,
		Version:   version,
	}
}
