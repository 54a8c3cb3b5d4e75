// Package ddd provides the entity and aggregate building blocks.
//
// Concrete entities embed Entity (or Aggregate), keep their fields in an unexported
// props struct made of value objects, and mutate those fields only through Set so
// that the entity knows whether it differs from what was loaded:
//
//	type User struct {
//		ddd.Aggregate
//		props Props
//	}
//
//	func (u *User) ChangeEmail(e domain.Email) {
//		ddd.Set(&u.Entity, "email", &u.props.Email, e)
//	}
package ddd

import (
	"cmp"
	"reflect"
	"slices"

	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
)

// MaxFields caps the number of top-level fields of an entity's props.
const MaxFields = 50

// Identity is the framework-owned part of every entity.
type Identity struct {
	ID        domain.ID
	CreatedAt domain.Timestamp
	UpdatedAt domain.Timestamp
}

func (i Identity) complete() bool {
	return !i.ID.IsNil() && !i.CreatedAt.IsZero() && !i.UpdatedAt.IsZero()
}

// Identifiable is anything with an entity identifier.
type Identifiable interface {
	ID() domain.ID
}

// Record is the lifecycle view of an entity used by repositories.
type Record interface {
	Identifiable
	CreatedAt() domain.Timestamp
	UpdatedAt() domain.Timestamp
	Created() bool
	Updated() bool
}

// BeforeSaver is implemented by entities that need a hook right before they are
// written.
type BeforeSaver interface {
	BeforeSave() error
}

// Change records one modified field and its value at load time.
type Change struct {
	Field    string
	Version  uint64
	original any
}

// Entity tracks identity and modifications. Entities are not safe for concurrent
// mutation.
type Entity struct {
	id        domain.ID
	createdAt domain.Timestamp
	updatedAt domain.Timestamp
	created   bool

	version uint64
	changes []Change
}

// Init validates props and establishes identity. An entity given a complete
// identity (id, created-at and updated-at) is treated as loaded from storage;
// otherwise it is new, keeps a supplied id or generates one, and is stamped with
// the current time.
//
// Errors: CodeArgumentMissing for nil or empty props, CodeArgumentInvalid for
// props that are not a struct, have too many fields or hold raw primitives, and
// whatever validate returns.
func (e *Entity) Init(identity Identity, props any, validate func() error) error {
	if err := checkProps(props); err != nil {
		return err
	}
	if validate != nil {
		if err := validate(); err != nil {
			return err
		}
	}

	e.version = 0
	e.changes = nil
	if identity.complete() {
		e.id = identity.ID
		e.createdAt = identity.CreatedAt
		e.updatedAt = identity.UpdatedAt
		e.created = false
		return nil
	}

	e.id = identity.ID
	if e.id.IsNil() {
		e.id = domain.NewID()
	}
	now := domain.Now()
	e.createdAt = now
	e.updatedAt = now
	e.created = true
	return nil
}

func checkProps(props any) error {
	if props == nil {
		return dErrors.New(dErrors.CodeArgumentMissing, "entity props should not be empty")
	}
	v := reflect.ValueOf(props)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return dErrors.New(dErrors.CodeArgumentMissing, "entity props should not be empty")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return dErrors.Newf(dErrors.CodeArgumentInvalid, "entity props should be a struct, got %s", v.Kind())
	}
	t := v.Type()
	if t.NumField() == 0 || v.IsZero() {
		return dErrors.New(dErrors.CodeArgumentMissing, "entity props should not be empty")
	}
	if t.NumField() > MaxFields {
		return dErrors.Newf(dErrors.CodeArgumentInvalid, "entity props should not have more than %d fields", MaxFields)
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if isRawPrimitive(f.Type) {
			return dErrors.Newf(dErrors.CodeArgumentInvalid, "entity field %s must be a value object or entity, got %s", f.Name, f.Type)
		}
	}
	return nil
}

// isRawPrimitive reports unnamed builtin scalars (string, int, bool...), also
// behind pointers and inside slices or maps.
func isRawPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		if t.Name() != "" {
			return false
		}
		return isRawPrimitive(t.Elem())
	case reflect.Map:
		if t.Name() != "" {
			return false
		}
		return isRawPrimitive(t.Elem())
	case reflect.Struct, reflect.Interface, reflect.Func, reflect.Chan:
		return false
	default:
		return t.PkgPath() == ""
	}
}

func (e *Entity) ID() domain.ID               { return e.id }
func (e *Entity) CreatedAt() domain.Timestamp { return e.createdAt }
func (e *Entity) UpdatedAt() domain.Timestamp { return e.updatedAt }

// Created is true for entities built without a stored identity.
func (e *Entity) Created() bool { return e.created }

// Updated is true while any field differs from its value at construction.
func (e *Entity) Updated() bool { return len(e.changes) > 0 }

// Version counts effective mutations since construction.
func (e *Entity) Version() uint64 { return e.version }

// Changes lists modified fields in modification order.
func (e *Entity) Changes() []string {
	ordered := slices.Clone(e.changes)
	slices.SortFunc(ordered, func(a, b Change) int { return cmp.Compare(a.Version, b.Version) })
	fields := make([]string, 0, len(ordered))
	for _, c := range ordered {
		fields = append(fields, c.Field)
	}
	return fields
}

// Equals compares entities by identifier.
func (e *Entity) Equals(other Identifiable) bool {
	if e == nil || other == nil {
		return false
	}
	if rv := reflect.ValueOf(other); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}
	return !e.id.IsNil() && e.id.Equal(other.ID())
}

// Equaler is implemented by value objects.
type Equaler[T any] interface {
	Equal(T) bool
}

// Set assigns next to *dst and records the change on e. Setting a field back to
// its original value removes it from the change list.
func Set[T Equaler[T]](e *Entity, field string, dst *T, next T) {
	if (*dst).Equal(next) {
		return
	}
	e.version++
	idx := slices.IndexFunc(e.changes, func(c Change) bool { return c.Field == field })
	switch {
	case idx < 0:
		e.changes = append(e.changes, Change{Field: field, Version: e.version, original: *dst})
	case e.changes[idx].original.(T).Equal(next):
		e.changes = slices.Delete(e.changes, idx, idx+1)
	default:
		e.changes[idx].Version = e.version
	}
	*dst = next
}
