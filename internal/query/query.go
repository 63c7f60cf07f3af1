// Package query assembles filter, sort and pagination criteria for
// document-store lookups.
//
// A Builder collects predicates in AND mode (list filtering) or OR mode
// (autocomplete, where any field may match). Criteria returns nil when no
// predicate was appended, which callers must treat as "no constraint".
// Rendering to the MongoDB filter language lives in bson.go so the
// predicate tree itself stays backend-neutral.
package query

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mode determines how predicates combine.
type Mode int

// Combine modes.
const (
	And Mode = iota
	Or
)

func (m Mode) String() string {
	if m == Or {
		return "OR"
	}

	return "AND"
}

// Op is a predicate operator.
type Op string

// Predicate operators.
const (
	OpEqual     Op = "eq"
	OpNotEqual  Op = "ne"
	OpIn        Op = "in"
	OpRegex     Op = "regex"
	OpGTE       Op = "gte"
	OpLTE       Op = "lte"
	OpElemMatch Op = "elemMatch"
)

// Predicate is one clause: a property, an operator and its operand.
// For OpElemMatch, SubField names the element property compared with Value.
type Predicate struct {
	Field    string
	Op       Op
	Value    any
	SubField string
}

// Group is the combinator node returned by Builder.Criteria.
type Group struct {
	Mode       Mode
	Predicates []Predicate
}

// Range is an inclusive bound pair. A zero Start or End is treated as absent.
type Range struct {
	Start any
	End   any
}

// Builder accumulates predicates plus pagination and sort.
// Limit and Offset of zero mean unbounded.
type Builder struct {
	predicates []Predicate
	mode       Mode
	limit      int64
	offset     int64
	sort       *Sort
}

// ForList returns an AND-mode builder for paginated listing.
func ForList(limit, offset int64, orderBy string) *Builder {
	return newBuilder(And, limit, offset, orderBy)
}

// ForAutocomplete returns an OR-mode builder for typeahead search. Offset is not used.
func ForAutocomplete(limit int64, orderBy string) *Builder {
	return newBuilder(Or, limit, 0, orderBy)
}

func newBuilder(mode Mode, limit, offset int64, orderBy string) *Builder {
	return &Builder{
		mode:   mode,
		limit:  max(limit, 0),
		offset: max(offset, 0),
		sort:   ParseSort(orderBy),
	}
}

// Mode returns the combine mode.
func (b *Builder) Mode() Mode { return b.mode }

// Limit returns the row limit, zero when unbounded.
func (b *Builder) Limit() int64 { return b.limit }

// Offset returns the number of rows to skip.
func (b *Builder) Offset() int64 { return b.offset }

// Sort returns the parsed sort, or nil for store order.
func (b *Builder) Sort() *Sort { return b.sort }

// Len returns the number of appended predicates.
func (b *Builder) Len() int { return len(b.predicates) }

// AppendEqual adds an exact match.
func (b *Builder) AppendEqual(field string, value any) {
	b.add(Predicate{Field: field, Op: OpEqual, Value: value})
}

// AppendNotEqual adds a negated match.
func (b *Builder) AppendNotEqual(field string, value any) {
	b.add(Predicate{Field: field, Op: OpNotEqual, Value: value})
}

// AppendEqualNull matches records where field is null or missing.
func (b *Builder) AppendEqualNull(field string) {
	b.add(Predicate{Field: field, Op: OpEqual})
}

// AppendNotEqualNull matches records where field holds a value.
func (b *Builder) AppendNotEqualNull(field string) {
	b.add(Predicate{Field: field, Op: OpNotEqual})
}

// AppendID adds an identifier match. A raw value that does not parse as an
// ObjectID is replaced by a fresh one that no stored record can carry, so the
// lookup yields no rows instead of an error.
func (b *Builder) AppendID(field, raw string) {
	b.AppendEqual(field, ParseID(raw))
}

// ParseID parses a hex ObjectID, substituting a newly generated id when raw is malformed.
func ParseID(raw string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NewObjectIDFromTimestamp(time.Now())
	}

	return id
}

// AppendIn adds a set-membership match.
func (b *Builder) AppendIn(field string, values any) {
	b.add(Predicate{Field: field, Op: OpIn, Value: values})
}

// AppendContainsFold adds a case-insensitive substring match. The substring
// is matched literally.
func (b *Builder) AppendContainsFold(field, substring string) {
	b.add(Predicate{Field: field, Op: OpRegex, Value: regexp.QuoteMeta(substring)})
}

// AppendRange adds inclusive bounds. A bound is emitted only when it is
// non-zero, so 0, "" and the zero time are all read as absent; use
// AppendGTE or AppendLTE for an explicit zero bound. With usingDates set,
// string bounds are parsed as RFC 3339 timestamps and unparseable ones dropped.
func (b *Builder) AppendRange(field string, r Range, usingDates bool) {
	if start, ok := rangeBound(r.Start, usingDates); ok {
		b.AppendGTE(field, start)
	}

	if end, ok := rangeBound(r.End, usingDates); ok {
		b.AppendLTE(field, end)
	}
}

// AppendGTE adds an inclusive lower bound, including zero values.
func (b *Builder) AppendGTE(field string, value any) {
	b.add(Predicate{Field: field, Op: OpGTE, Value: value})
}

// AppendLTE adds an inclusive upper bound, including zero values.
func (b *Builder) AppendLTE(field string, value any) {
	b.add(Predicate{Field: field, Op: OpLTE, Value: value})
}

// AppendElemMatch matches records whose arrayField holds at least one
// element with subField equal to value.
func (b *Builder) AppendElemMatch(arrayField, subField string, value any) {
	b.add(Predicate{Field: arrayField, Op: OpElemMatch, SubField: subField, Value: value})
}

// Reset clears predicates. Limit, offset and sort are kept.
func (b *Builder) Reset() {
	b.predicates = nil
}

// Criteria returns the combined predicates, or nil when none were appended.
func (b *Builder) Criteria() *Group {
	if len(b.predicates) == 0 {
		return nil
	}

	preds := make([]Predicate, len(b.predicates))
	copy(preds, b.predicates)

	return &Group{Mode: b.mode, Predicates: preds}
}

func (b *Builder) add(p Predicate) {
	b.predicates = append(b.predicates, p)
}

func rangeBound(v any, usingDates bool) (any, bool) {
	if isZero(v) {
		return nil, false
	}

	if !usingDates {
		return v, true
	}

	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, false
		}

		return parsed, true
	case *time.Time:
		return *t, true
	default:
		return v, true
	}
}

func isZero(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.IsNil() || rv.Elem().IsZero()
	}

	return rv.IsZero()
}

// Direction is a sort direction.
type Direction int

// Sort directions, matching the store's numeric convention.
const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Sort is a single-key ordering.
type Sort struct {
	Field     string
	Direction Direction
}

// IDField is the store's primary key field.
const IDField = "_id"

// ParseSort parses a "field_DIRECTION" expression. One leading underscore is
// stripped, the remainder is split once on the next underscore, "ASC" means
// ascending and anything else descending. A bare "id" maps to IDField.
// An empty expression yields nil.
func ParseSort(expr string) *Sort {
	expr = strings.TrimPrefix(expr, "_")
	if expr == "" {
		return nil
	}

	field, dir, _ := strings.Cut(expr, "_")
	if field == "" {
		return nil
	}

	if field == "id" {
		field = IDField
	}

	s := &Sort{Field: field, Direction: Descending}
	if dir == "ASC" {
		s.Direction = Ascending
	}

	return s
}
