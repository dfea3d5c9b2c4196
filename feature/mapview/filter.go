package mapview

import (
	"errors"
	"fmt"

	"crowdmarks/core/reconcile"
	"crowdmarks/core/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// ErrInvalidFilter is returned for unparsable filter parameters.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter narrows the annotations returned to a client.
// The zero value matches everything.
type Filter struct {
	Bound  *orb.Bound
	Center *orb.Point
	// Radius is in meters and only applies with Center.
	Radius float64
}

// ParseFilter builds a filter from query parameters.
// bbox is "minLon,minLat,maxLon,maxLat"; lat, lon and radius go together.
func ParseFilter(bbox, lat, lon, radius string) (Filter, error) {
	var f Filter

	if bbox != "" {
		v, err := utils.ParseFloatList(bbox)
		if err != nil || len(v) != 4 {
			return Filter{}, fmt.Errorf("%w: bbox must be minLon,minLat,maxLon,maxLat", ErrInvalidFilter)
		}
		if v[0] > v[2] || v[1] > v[3] {
			return Filter{}, fmt.Errorf("%w: bbox min exceeds max", ErrInvalidFilter)
		}
		b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
		f.Bound = &b
	}

	if lat == "" && lon == "" && radius == "" {
		return f, nil
	}
	if lat == "" || lon == "" || radius == "" {
		return Filter{}, fmt.Errorf("%w: lat, lon and radius are required together", ErrInvalidFilter)
	}

	la, err1 := utils.ParseFloat(lat)
	lo, err2 := utils.ParseFloat(lon)
	r, err3 := utils.ParseFloat(radius)
	if err := errors.Join(err1, err2, err3); err != nil {
		return Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 || r < 0 {
		return Filter{}, fmt.Errorf("%w: center or radius out of range", ErrInvalidFilter)
	}

	c := orb.Point{lo, la}
	f.Center = &c
	f.Radius = r
	return f, nil
}

// Match reports whether the annotation passes the filter.
func (f Filter) Match(a reconcile.Annotation) bool {
	p := a.Coordinate.Point()
	if f.Bound != nil && !f.Bound.Contains(p) {
		return false
	}
	if f.Center != nil && geo.Distance(*f.Center, p) > f.Radius {
		return false
	}
	return true
}

// Apply returns the matching annotations in their original order.
func (f Filter) Apply(in []reconcile.Annotation) []reconcile.Annotation {
	if f.Bound == nil && f.Center == nil {
		return in
	}
	out := make([]reconcile.Annotation, 0, len(in))
	for _, a := range in {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
