// Package query describes filter conditions independently of the store and
// translates them into gorm clause expressions at the repository boundary.
//
// Predicates are plain values; nothing here performs I/O. Value objects passed as
// comparison values are unwrapped through driver.Valuer, so domain.ID and a raw
// UUID string can be used interchangeably.
package query

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	dErrors "kycore/pkg/domain-errors"
)

// Operation is the kind of a predicate.
type Operation string

const (
	OpEqual              Operation = "EQUAL"
	OpNotEqual           Operation = "NOT_EQUAL"
	OpIn                 Operation = "IN"
	OpNotIn              Operation = "NOT_IN"
	OpGreaterThan        Operation = "GREATER_THAN"
	OpGreaterThanOrEqual Operation = "GREATER_THAN_OR_EQUAL"
	OpLessThan           Operation = "LESS_THAN"
	OpLessThanOrEqual    Operation = "LESS_THAN_OR_EQUAL"
	OpBetween            Operation = "BETWEEN"
	OpLike               Operation = "LIKE"
	OpILike              Operation = "I_LIKE"
	OpJSONPath           Operation = "JSON_PATH"
	OpJSONContains       Operation = "JSON_CONTAINS"
	OpJSONHasKey         Operation = "JSON_HAS_KEY"
	OpIsNull             Operation = "IS_NULL"
	OpIsNotNull          Operation = "IS_NOT_NULL"
)

// Predicate is one filter condition with zero, one or two comparison values
// (set operations carry any number).
type Predicate struct {
	op     Operation
	values []any
	err    error
}

// Operation returns the predicate kind.
func (p Predicate) Operation() Operation { return p.op }

// Values returns the unwrapped comparison values.
func (p Predicate) Values() []any { return p.values }

func single(op Operation, v any) Predicate {
	raw, err := unwrap(v)
	return Predicate{op: op, values: []any{raw}, err: err}
}

func many(op Operation, vs []any) Predicate {
	p := Predicate{op: op, values: make([]any, 0, len(vs))}
	for _, v := range vs {
		raw, err := unwrap(v)
		if err != nil && p.err == nil {
			p.err = err
		}
		p.values = append(p.values, raw)
	}
	return p
}

func unwrap(v any) (any, error) {
	valuer, ok := v.(driver.Valuer)
	if !ok {
		return v, nil
	}
	raw, err := valuer.Value()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "cannot unwrap filter value")
	}
	return raw, nil
}

func Equal(v any) Predicate              { return single(OpEqual, v) }
func NotEqual(v any) Predicate           { return single(OpNotEqual, v) }
func GreaterThan(v any) Predicate        { return single(OpGreaterThan, v) }
func GreaterThanOrEqual(v any) Predicate { return single(OpGreaterThanOrEqual, v) }
func LessThan(v any) Predicate           { return single(OpLessThan, v) }
func LessThanOrEqual(v any) Predicate    { return single(OpLessThanOrEqual, v) }

// In matches any of values. Raw scalars and value objects may be mixed.
func In(values ...any) Predicate { return many(OpIn, values) }

// NotIn matches none of values.
func NotIn(values ...any) Predicate { return many(OpNotIn, values) }

// Between matches lo <= column <= hi.
func Between(lo, hi any) Predicate { return many(OpBetween, []any{lo, hi}) }

// Like matches values containing s, case-sensitively.
func Like(s string) Predicate { return Predicate{op: OpLike, values: []any{"%" + s + "%"}} }

// ILike matches values containing s, ignoring case.
func ILike(s string) Predicate { return Predicate{op: OpILike, values: []any{"%" + s + "%"}} }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside Like and ILike. Postgres treats the
// backslash as the default escape character. Use it for user-supplied terms.
func EscapeLike(s string) string { return likeEscaper.Replace(s) }

// JSONPath matches documents for which the SQL/JSON path query yields an item,
// e.g. JSONPath(`$.tags[*] ? (@ == $tag)`, map[string]any{"tag": "vip"}).
func JSONPath(path string, vars map[string]any) Predicate {
	if vars == nil {
		vars = map[string]any{}
	}
	encoded, err := json.Marshal(vars)
	if err != nil {
		return Predicate{op: OpJSONPath, err: dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "json path variables are not serializable")}
	}
	return Predicate{op: OpJSONPath, values: []any{path, string(encoded)}}
}

// JSONContains matches documents containing obj.
func JSONContains(obj any) Predicate {
	encoded, err := json.Marshal(obj)
	if err != nil {
		return Predicate{op: OpJSONContains, err: dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "json object is not serializable")}
	}
	return Predicate{op: OpJSONContains, values: []any{string(encoded)}}
}

// JSONHasKey matches documents that have the nested key path.
func JSONHasKey(keys ...string) Predicate {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return Predicate{op: OpJSONHasKey, values: values}
}

func IsNull() Predicate    { return Predicate{op: OpIsNull} }
func IsNotNull() Predicate { return Predicate{op: OpIsNotNull} }

// Build translates the predicate into a condition on column.
//
// Errors: CodeUnknownOperation for an unrecognized kind, CodeArgumentInvalid for
// malformed values.
func (p Predicate) Build(column string) (clause.Expression, error) {
	if p.err != nil {
		return nil, p.err
	}
	col := clause.Column{Name: column}
	switch p.op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual, OpLike, OpILike, OpJSONContains:
		if len(p.values) != 1 {
			return nil, dErrors.Newf(dErrors.CodeArgumentInvalid, "%s expects one value", p.op)
		}
	case OpBetween, OpJSONPath:
		if len(p.values) != 2 {
			return nil, dErrors.Newf(dErrors.CodeArgumentInvalid, "%s expects two values", p.op)
		}
	case OpJSONHasKey:
		if len(p.values) == 0 {
			return nil, dErrors.Newf(dErrors.CodeArgumentInvalid, "%s expects at least one key", p.op)
		}
	}

	switch p.op {
	case OpEqual:
		return clause.Eq{Column: col, Value: p.values[0]}, nil
	case OpNotEqual:
		return clause.Neq{Column: col, Value: p.values[0]}, nil
	case OpIn:
		return clause.IN{Column: col, Values: p.values}, nil
	case OpNotIn:
		return clause.Not(clause.IN{Column: col, Values: p.values}), nil
	case OpGreaterThan:
		return clause.Gt{Column: col, Value: p.values[0]}, nil
	case OpGreaterThanOrEqual:
		return clause.Gte{Column: col, Value: p.values[0]}, nil
	case OpLessThan:
		return clause.Lt{Column: col, Value: p.values[0]}, nil
	case OpLessThanOrEqual:
		return clause.Lte{Column: col, Value: p.values[0]}, nil
	case OpBetween:
		return clause.Expr{SQL: "? BETWEEN ? AND ?", Vars: []any{col, p.values[0], p.values[1]}}, nil
	case OpLike:
		return clause.Like{Column: col, Value: p.values[0]}, nil
	case OpILike:
		return clause.Expr{SQL: "? ILIKE ?", Vars: []any{col, p.values[0]}}, nil
	case OpJSONPath:
		return clause.Expr{SQL: "jsonb_path_exists(?, ?::jsonpath, ?::jsonb, true)", Vars: []any{col, p.values[0], p.values[1]}}, nil
	case OpJSONContains:
		return clause.Expr{SQL: "? @> ?::jsonb", Vars: []any{col, p.values[0]}}, nil
	case OpJSONHasKey:
		keys := make([]string, len(p.values))
		for i, v := range p.values {
			keys[i], _ = v.(string)
		}
		return datatypes.JSONQuery(column).HasKey(keys...), nil
	case OpIsNull:
		return clause.Eq{Column: col, Value: nil}, nil
	case OpIsNotNull:
		return clause.Neq{Column: col, Value: nil}, nil
	default:
		return nil, dErrors.Newf(dErrors.CodeUnknownOperation, "unknown operation [%s]", p.op)
	}
}
