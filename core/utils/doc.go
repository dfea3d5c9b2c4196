// Package utils provides small conversion helpers shared by the features.
//
// The As* helpers decode loosely typed document fields and report whether the
// value had the expected type, so callers can substitute a default and flag
// the record instead of rejecting it.
package utils
