// Package domain holds the value objects every entity is built from.
//
// Value objects are immutable, validate at construction and compare by value.
// Constructors return CodeArgumentInvalid errors and never a partially built value.
// Each type implements driver.Valuer so predicates and storage rows can unwrap it
// to its raw column value.
package domain

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"

	dErrors "kycore/pkg/domain-errors"
)

// canonicalIDLength is the length of the hyphenated 8-4-4-4-12 textual form.
const canonicalIDLength = 36

// ID identifies an entity. Invariant: a random (version 4, RFC 4122 variant),
// non-nil 128-bit UUID.
//
// Usage: construct via NewID for fresh entities or ParseID at trust boundaries;
// direct conversion from uuid.UUID bypasses validation.
type ID uuid.UUID

// NewID generates a random identifier.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID constructs an ID from its canonical textual form.
//
// Errors: returns CodeArgumentInvalid for anything that is not a canonical,
// hyphenated, version 4 UUID (braced, URN and compact forms are rejected too).
func ParseID(s string) (ID, error) {
	if len(s) != canonicalIDLength {
		return ID{}, dErrors.New(dErrors.CodeArgumentInvalid, "incorrect ID format")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ID{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "incorrect ID format")
	}
	if parsed == uuid.Nil || parsed.Version() != 4 || parsed.Variant() != uuid.RFC4122 {
		return ID{}, dErrors.New(dErrors.CodeArgumentInvalid, "incorrect ID format")
	}
	return ID(parsed), nil
}

// MustParseID is ParseID for constants in tests and fixtures. It panics on
// invalid input.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical lowercase hyphenated form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Minified returns the identifier without hyphens.
func (id ID) Minified() string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// IsNil reports whether the ID is the zero value.
func (id ID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ID) Equal(other ID) bool {
	return id == other
}

// Value renders the ID as its canonical string column value.
func (id ID) Value() (driver.Value, error) {
	if id.IsNil() {
		return nil, nil
	}
	return id.String(), nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
