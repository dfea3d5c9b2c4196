package reconcile

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

// Kind is the type of change reported by the remote collection.
type Kind int

const (
	// Added reports a new Pin record.
	Added Kind = iota + 1
	// Modified reports a full-document replacement of a Pin record.
	Modified
	// Removed reports a deleted Pin record.
	Removed
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Coordinate is a WGS84 latitude/longitude pair.
// Equality is exact floating-point equality on both fields.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the coordinate as an orb point (longitude first).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// Record is a Pin record as delivered by the remote store.
type Record struct {
	// ID is the document identifier issued by the remote store.
	ID          string
	Name        string
	Description string
	Coordinate  Coordinate
	// ImageRef is the blob store object key of the photo, empty when none.
	ImageRef  string
	CreatedAt time.Time
}

// Event is a single change notification from the remote collection.
type Event struct {
	Kind   Kind
	Record Record
}

// Annotation is the local, display-facing form of a pin.
type Annotation struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle"`
	ImageRef   string     `json:"imageRef,omitempty"`
}

// AnnotationFrom builds the annotation displayed for a record.
func AnnotationFrom(r Record) Annotation {
	return Annotation{
		ID:         r.ID,
		Coordinate: r.Coordinate,
		Title:      r.Name,
		Subtitle:   r.Description,
		ImageRef:   r.ImageRef,
	}
}

// Op is the mutation applied to the annotation collection.
type Op string

const (
	OpNone    Op = "none"
	OpInsert  Op = "insert"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
)

// Mutation describes one committed change to the annotation collection.
type Mutation struct {
	// Seq is the collection version after the mutation; zero for OpNone.
	Seq uint64 `json:"seq"`
	Op  Op     `json:"op"`
	// Annotation is the inserted, updated or deleted annotation.
	Annotation Annotation `json:"annotation"`
	// Previous holds the annotation state before a replace.
	Previous *Annotation `json:"previous,omitempty"`
}

// MatchMode selects how Modified and Removed events find their annotation.
type MatchMode int

const (
	// MatchByID keys annotations on the remote document ID.
	MatchByID MatchMode = iota
	// MatchByCoordinate matches on exact latitude and longitude equality by
	// scanning the collection. Duplicate Added events produce duplicates.
	MatchByCoordinate
)

// String returns the configuration name of the mode.
func (m MatchMode) String() string {
	if m == MatchByCoordinate {
		return "coordinate"
	}
	return "id"
}

// Stats are running counters of a Reconciler.
type Stats struct {
	Applied   uint64 `json:"applied"`
	Unmatched uint64 `json:"unmatched"`
	Failures  uint64 `json:"failures"`
	Size      int    `json:"size"`
	Version   uint64 `json:"version"`
}
