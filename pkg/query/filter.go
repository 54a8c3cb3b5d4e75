package query

import "gorm.io/gorm/clause"

// Filter is one optional field of an entity's filter struct. It is either unset,
// a raw value compared for equality, or a predicate.
type Filter[T any] struct {
	set       bool
	value     T
	predicate *Predicate
}

// Value filters on equality with v.
func Value[T any](v T) Filter[T] {
	return Filter[T]{set: true, value: v}
}

// Match filters with an arbitrary predicate.
func Match[T any](p Predicate) Filter[T] {
	return Filter[T]{set: true, predicate: &p}
}

// IsSet reports whether the filter constrains anything.
func (f Filter[T]) IsSet() bool { return f.set }

// Predicate returns the effective predicate of a set filter.
func (f Filter[T]) Predicate() Predicate {
	if f.predicate != nil {
		return *f.predicate
	}
	return Equal(f.value)
}

// Condition binds the filter to column. ok is false for unset filters.
func (f Filter[T]) Condition(column string) (Condition, bool) {
	if !f.set {
		return Condition{}, false
	}
	return Condition{Column: column, Predicate: f.Predicate()}, true
}

// Condition is a predicate bound to a column.
type Condition struct {
	Column    string
	Predicate Predicate
}

// Build translates the condition into a clause expression.
func (c Condition) Build() (clause.Expression, error) {
	return c.Predicate.Build(c.Column)
}

// Conditions collects the set filters among pairs of column and filter.
type Conditions []Condition

// Add appends the condition of f when f is set.
func (cs *Conditions) Add(column string, f interface {
	Condition(column string) (Condition, bool)
}) {
	if c, ok := f.Condition(column); ok {
		*cs = append(*cs, c)
	}
}

// Where builds every condition into a single AND clause.
func (cs Conditions) Where() (clause.Where, error) {
	exprs := make([]clause.Expression, 0, len(cs))
	for _, c := range cs {
		expr, err := c.Build()
		if err != nil {
			return clause.Where{}, err
		}
		exprs = append(exprs, expr)
	}
	return clause.Where{Exprs: exprs}, nil
}
