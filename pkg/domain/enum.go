package domain

import (
	"database/sql/driver"
	"encoding/json"
	"slices"

	dErrors "kycore/pkg/domain-errors"
)

// EnumSet is the fixed set of accepted values for one enumeration.
type EnumSet[T ~string] struct {
	name   string
	values []T
}

// NewEnumSet declares an enumeration. name appears in validation errors.
func NewEnumSet[T ~string](name string, values ...T) EnumSet[T] {
	return EnumSet[T]{name: name, values: slices.Clone(values)}
}

// Contains reports whether v is an accepted value.
func (s EnumSet[T]) Contains(v T) bool {
	return slices.Contains(s.values, v)
}

// Values returns the accepted values in declaration order.
func (s EnumSet[T]) Values() []T {
	return slices.Clone(s.values)
}

// Parse constructs an Enum from external input.
//
// Errors: returns CodeArgumentInvalid when raw is empty or not in the set.
func (s EnumSet[T]) Parse(raw string) (Enum[T], error) {
	return s.Of(T(raw))
}

// Of validates an already typed value.
func (s EnumSet[T]) Of(v T) (Enum[T], error) {
	if v == "" {
		return Enum[T]{}, dErrors.Newf(dErrors.CodeArgumentInvalid, "%s is required", s.name)
	}
	if !s.Contains(v) {
		return Enum[T]{}, dErrors.Newf(dErrors.CodeArgumentInvalid, "invalid %s: %q", s.name, string(v))
	}
	return Enum[T]{v: v}, nil
}

// MustOf is Of for package-level constants. It panics on invalid input.
func (s EnumSet[T]) MustOf(v T) Enum[T] {
	e, err := s.Of(v)
	if err != nil {
		panic(err)
	}
	return e
}

// Enum holds a value validated against an EnumSet.
type Enum[T ~string] struct {
	v T
}

func (e Enum[T]) Get() T         { return e.v }
func (e Enum[T]) String() string { return string(e.v) }
func (e Enum[T]) IsZero() bool   { return e.v == "" }

func (e Enum[T]) Equal(other Enum[T]) bool {
	return e.v == other.v
}

func (e Enum[T]) Value() (driver.Value, error) {
	if e.v == "" {
		return nil, nil
	}
	return string(e.v), nil
}

func (e Enum[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(e.v))
}
