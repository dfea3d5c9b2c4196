package reconcile

import (
	"math"

	"crowdmarks/core/utils"
)

// Document field names of a Pin record. The mobile clients write the same
// names, so both share one collection.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldImageRef    = "imageUrl"
	FieldCreatedAt   = "timestamp"
)

// DecodeRecord builds a Record from raw document data. Missing,
// wrong-typed or non-finite fields decode to their zero value and are listed in problems;
// the record is still usable. The image and timestamp fields are optional.
func DecodeRecord(id string, data map[string]any) (rec Record, problems []string) {
	rec.ID = id

	str := func(field string) string {
		s, ok := utils.AsString(data[field])
		if !ok {
			problems = append(problems, field)
		}
		return s
	}
	num := func(field string) float64 {
		f, ok := utils.AsFloat64(data[field])
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			problems = append(problems, field)
			return 0
		}
		return f
	}

	rec.Name = str(FieldName)
	rec.Description = str(FieldDescription)
	rec.Coordinate.Latitude = num(FieldLatitude)
	rec.Coordinate.Longitude = num(FieldLongitude)

	if v, present := data[FieldImageRef]; present && v != nil {
		s, ok := utils.AsString(v)
		if !ok {
			problems = append(problems, FieldImageRef)
		}
		rec.ImageRef = s
	}

	if v, present := data[FieldCreatedAt]; present && v != nil {
		t, ok := utils.AsTime(v)
		if !ok {
			problems = append(problems, FieldCreatedAt)
		}
		rec.CreatedAt = t
	}

	return rec, problems
}

// Encode returns the document data written for a new Pin record.
// The creation timestamp is left to the caller, which sets a server timestamp.
func (r Record) Encode() map[string]any {
	return map[string]any{
		FieldName:        r.Name,
		FieldDescription: r.Description,
		FieldLatitude:    r.Coordinate.Latitude,
		FieldLongitude:   r.Coordinate.Longitude,
		FieldImageRef:    r.ImageRef,
	}
}
