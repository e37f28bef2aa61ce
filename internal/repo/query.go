package repo

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMultipleOperationsProvided = errors.New("multiple operations provided")

type (
	ComparisonOp   string
	OrderDirection string
)

const (
	Equal       ComparisonOp = "="
	GreaterThan ComparisonOp = ">"
	LessThan    ComparisonOp = "<"

	Desc OrderDirection = "desc"
	Asc  OrderDirection = "asc"

	IDField                  QueryField = "id"
	NameField                QueryField = "name"
	SlugField                QueryField = "slug"
	HospitalIDField          QueryField = "hospital_id"
	PatientIDField           QueryField = "patient_id"
	PrescriptionIDField      QueryField = "prescription_id"
	MedicalRecordNumberField QueryField = "medical_record_number"
	ResourceField            QueryField = "resource"
	VisitDateField           QueryField = "visit_date"
	IssuedAtField            QueryField = "issued_at"
	CreatedField             QueryField = "created_at"
)

type Key struct {
	Value     any
	Operation ComparisonOp
}

// CompositeKeyEntry represents an entry in a CompositeKey,
// containing a Key and an optional error for validation or processing.
type CompositeKeyEntry struct {
	Key Key
	Err error
}

// CompositeKey is a collection of QueryField and matching value that are collectively used to find a record.
// IsStrict: False Conds: Key = 1, Key2 = 1  where Key = 1 OR Key2 = 1
type CompositeKey struct {
	IsStrict bool
	Conds    []Condition
}

type Condition struct {
	Field QueryField
	Value CompositeKeyEntry
}

func (c *Condition) String() string {
	return fmt.Sprintf("%s %s '%v'", c.Field, c.Value.Key.Operation, c.Value.Key.Value)
}

// NewCompositeKey creates and returns a new CompositeKey.
func NewCompositeKey() CompositeKey {
	return CompositeKey{
		IsStrict: true,
		Conds:    []Condition{},
	}
}

// Where adds a condition to the CompositeKey.
func (c CompositeKey) Where(q QueryField, v any,
	options ...func(v any) Key,
) CompositeKey {
	switch {
	case len(options) == 0:
		c.Conds = append(c.Conds,
			Condition{Field: q, Value: CompositeKeyEntry{Key: Key{Value: v, Operation: Equal}}})
	case len(options) > 1:
		c.Conds = append(c.Conds,
			Condition{Field: q, Value: CompositeKeyEntry{Err: ErrMultipleOperationsProvided}})
	default:
		c.Conds = append(c.Conds,
			Condition{Field: q, Value: CompositeKeyEntry{Key: options[0](v)}})
	}

	return c
}

func Gt(v any) Key {
	return Key{Value: v, Operation: GreaterThan}
}

func Lt(v any) Key {
	return Key{Value: v, Operation: LessThan}
}

type Query struct {
	// Limit is a max size of returned elements.
	Limit int

	Offset int

	// CompositeKeys form the where part of the Query
	CompositeKeyGroup []CompositeKeyGroup

	// Used when updating a model with zero-values
	// If All is true all fields will be updated. Otherwise only the provided will be updated
	// If this is not provided, only non-zero values are updated
	UpdateFields Update

	OrderFields []OrderField
}

type Update struct {
	Fields []QueryField
	All    bool
}

type QueryField = string

type OrderField struct {
	Field     QueryField
	Direction OrderDirection
}

// NewQuery creates and returns a new empty query.
func NewQuery() *Query {
	return &Query{
		CompositeKeyGroup: make([]CompositeKeyGroup, 0),
		UpdateFields: Update{
			Fields: make([]QueryField, 0),
			All:    false,
		},
	}
}

// NewQueryByID is the query most lookups use.
func NewQueryByID(id any) *Query {
	return NewQuery().Where(NewCompositeKeyGroup(NewCompositeKey().Where(IDField, id)))
}

type CompositeKeyGroup struct {
	CompositeKey CompositeKey
	IsStrict     bool
}

func isStrictToString(b bool) string {
	if b {
		return "AND"
	}

	return "OR"
}

func NewCompositeKeyGroup(key CompositeKey) CompositeKeyGroup {
	return CompositeKeyGroup{
		CompositeKey: key,
		IsStrict:     true,
	}
}

func (ckg *CompositeKeyGroup) String() string {
	var strBuilder strings.Builder

	for i, ck := range ckg.CompositeKey.Conds {
		if i != 0 {
			strBuilder.WriteString(fmt.Sprintf(" %s ", isStrictToString(ckg.CompositeKey.IsStrict)))
		}

		strBuilder.WriteString(ck.String())
	}

	return strBuilder.String()
}

func (q *Query) Where(conds ...CompositeKeyGroup) *Query {
	q.CompositeKeyGroup = append(q.CompositeKeyGroup, conds...)
	return q
}

func (q *Query) Update(fields ...QueryField) *Query {
	q.UpdateFields.Fields = append(q.UpdateFields.Fields, fields...)
	return q
}

// SetLimit sets the limit value for the query.
func (q *Query) SetLimit(limit int) *Query {
	q.Limit = limit
	return q
}

// SetOffset sets the offset value for the query.
func (q *Query) SetOffset(offset int) *Query {
	q.Offset = offset
	return q
}

func (q *Query) Order(orderFields ...OrderField) *Query {
	q.OrderFields = append(q.OrderFields, orderFields...)
	return q
}
