package models

// FieldKind is one of the primitive semantic types a stored field can have.
type FieldKind int

const (
	KindText FieldKind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindVector
)

// String returns the lower-case name of the kind.
func (k FieldKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindVector:
		return "vector"
	default:
		return "text"
	}
}

// Field is one column of an index schema. Dim is only meaningful for
// KindVector fields.
type Field struct {
	Name string
	Kind FieldKind
	Dim  int
}

// IndexSchema declares the shape of an index at creation time. It is frozen
// once the index exists; ingestion never widens it.
type IndexSchema struct {
	Fields []Field
}

// VectorDim returns the dimensionality of the first vector field, or 0 when
// the schema has none.
func (s IndexSchema) VectorDim() int {
	for _, f := range s.Fields {
		if f.Kind == KindVector {
			return f.Dim
		}
	}
	return 0
}

// Record is one row destined for an index, keyed by field name. Fields absent
// from the map are written as NULL.
type Record map[string]interface{}

// TabularResult is the unmodified output of a structured query.
type TabularResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}
