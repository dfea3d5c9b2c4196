// Package reconcile keeps the map's Displayed Annotations in agreement with the
// remote Pin collection.
//
// The remote store only tells us what changed: every change arrives as an
// Event (Added, Modified, Removed) carrying the Pin record. A Reconciler owns
// the annotation collection and applies those events one at a time, strictly
// in arrival order, from a single goroutine (Run). Readers use Snapshot, Get
// and Len, which are safe to call concurrently with Run.
//
// # Event contract
//
//   - Added inserts a new annotation.
//   - Modified overwrites title, subtitle and image of the matching annotation
//     as one Replace mutation. Without a match the event is dropped.
//   - Removed deletes the matching annotation. Without a match the event is dropped.
//
// Dropped events and other recoverable problems are reported to a Sink as an
// Anomaly; they never stop the stream. A panic while applying one event is
// recovered and reported as ApplyFailure, and the next event still applies.
//
// # Matching
//
// MatchByID, the default, keys annotations on the document ID issued by the
// remote store. A pin whose coordinate changes stays the same annotation, and
// a repeated Added for a displayed ID replaces it.
//
// MatchByCoordinate reproduces the behaviour of the first mobile client:
// the match is exact float equality on latitude and longitude, found by a
// full scan. Two pins at the same coordinate are indistinguishable, a
// Modified that moves a pin is lost, and duplicate Added events display
// duplicates.
//
// # Observers
//
// Every committed mutation is passed to each Observer synchronously, before
// the next event is applied, so observers always see the committed state.
//
// # Usage
//
//	r := reconcile.New(reconcile.MatchByID, reconcile.WithSink(reconcile.NewLogSink(log)))
//	r.Subscribe(broadcaster)
//	go source.Subscribe(ctx, events)
//	err := r.Run(ctx, events)
package reconcile
