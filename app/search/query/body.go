// Package query accumulates filter, sort and pagination clauses
// and renders them into the engine's native request body
package query

import (
	"github.com/pkg/errors"
)

// ErrUnsupportedOperator returned by Where for operator without clause mapping
var ErrUnsupportedOperator = errors.New("unsupported operator")

// Operator compares field with value
type Operator string

// enum of all supported operators
const (
	Eq  Operator = "="
	Ne  Operator = "!="
	Gt  Operator = ">"
	Lt  Operator = "<"
	Gte Operator = ">="
	Lte Operator = "<="
)

// Operators lists supported operators, longest first so prefix matching works
var Operators = []Operator{Ne, Gte, Lte, Eq, Gt, Lt}

// sort directions
const (
	Asc  = "asc"
	Desc = "desc"
)

const (
	mustKey    = "must"
	mustNotKey = "must_not"
	sortKey    = "sort"
)

// Body is the mutable request body built by chained calls.
// It is kept in the native shape, so a body replaced with Replace
// still accepts clauses added after it. Not safe for concurrent use.
type Body struct {
	m map[string]interface{}
}

// NewBody makes empty body
func NewBody() *Body {
	return &Body{m: map[string]interface{}{}}
}

// Where adds clause comparing field with value, all clauses are conjunctive.
// Eq and Ne add term clause to must and must_not, others add range clause to must.
func (b *Body) Where(field string, op Operator, value interface{}) error {
	switch op {
	case Eq:
		b.add(mustKey, clause("term", field, value))
	case Ne:
		b.add(mustNotKey, clause("term", field, value))
	case Gt:
		b.add(mustKey, clause("range", field, map[string]interface{}{"gt": value}))
	case Lt:
		b.add(mustKey, clause("range", field, map[string]interface{}{"lt": value}))
	case Gte:
		b.add(mustKey, clause("range", field, map[string]interface{}{"gte": value}))
	case Lte:
		b.add(mustKey, clause("range", field, map[string]interface{}{"lte": value}))
	default:
		return errors.Wrapf(ErrUnsupportedOperator, "operator %q for field %q", op, field)
	}
	return nil
}

// WhereIn adds terms clause, to must if match is true and to must_not otherwise
func (b *Body) WhereIn(field string, values []interface{}, match bool) {
	if values == nil {
		values = []interface{}{}
	}
	key := mustKey
	if !match {
		key = mustNotKey
	}
	b.add(key, clause("terms", field, values))
}

// Limit sets pagination window [skip, skip+count), last call wins
func (b *Body) Limit(count, skip int) {
	b.m["from"] = skip
	b.m["size"] = count
}

// SortBy sets single sort field, last call wins.
// Only exact "desc" sorts descending, any other direction, "DESC" included, sorts ascending.
func (b *Body) SortBy(field, direction string) {
	dir := Asc
	if direction == Desc {
		dir = Desc
	}
	b.m[sortKey] = []interface{}{map[string]interface{}{field: dir}}
}

// HasSort checks if sort was set
func (b *Body) HasSort() bool {
	switch s := b.m[sortKey].(type) {
	case nil:
		return false
	case []interface{}:
		return len(s) > 0
	case string:
		return s != ""
	}
	return true
}

// DefaultSort sorts by relevance if no sort set
func (b *Body) DefaultSort() {
	if !b.HasSort() {
		b.m[sortKey] = []interface{}{"_score"}
	}
}

// Replace discards accumulated body and uses m instead
func (b *Body) Replace(m map[string]interface{}) {
	if m == nil {
		m = map[string]interface{}{}
	}
	b.m = deepCopy(m).(map[string]interface{})
}

// Map returns copy of the body, safe to modify or to pass to other goroutine
func (b *Body) Map() map[string]interface{} {
	return deepCopy(b.m).(map[string]interface{})
}

// Empty checks if nothing accumulated
func (b *Body) Empty() bool {
	return len(b.m) == 0
}

// Reset clears all accumulated clauses
func (b *Body) Reset() {
	b.m = map[string]interface{}{}
}

func (b *Body) add(key string, c map[string]interface{}) {
	q := child(child(b.m, "query"), "bool")
	list, _ := q[key].([]interface{})
	q[key] = append(list, c)
}

func clause(kind, field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{kind: map[string]interface{}{field: value}}
}

// child returns nested map, replacing absent or non-map value
func child(m map[string]interface{}, key string) map[string]interface{} {
	if c, ok := m[key].(map[string]interface{}); ok {
		return c
	}
	c := map[string]interface{}{}
	m[key] = c
	return c
}

func deepCopy(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		res := make(map[string]interface{}, len(val))
		for k, item := range val {
			res[k] = deepCopy(item)
		}
		return res
	case []interface{}:
		res := make([]interface{}, len(val))
		for i, item := range val {
			res[i] = deepCopy(item)
		}
		return res
	}
	return v
}
