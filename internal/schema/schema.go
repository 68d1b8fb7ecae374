package schema

import "fmt"

// Kind is the storage shape of a dataset field, which decides how a query
// parameter on that field is compiled.
type Kind string

const (
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindMixed   Kind = "mixed"
	KindDate    Kind = "date"
	KindBoolean Kind = "boolean"
)

// FieldDescriptor describes one queryable dataset field.
type FieldDescriptor struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	Kind   Kind   `yaml:"kind"`
}

// Schema is the set of known dataset fields. It is immutable after Load.
type Schema struct {
	Table  string            `yaml:"table"`
	Fields []FieldDescriptor `yaml:"fields"`

	byName   map[string]FieldDescriptor
	byColumn map[string]string
}

// Field looks up a descriptor by its public (query) name.
func (s *Schema) Field(name string) (FieldDescriptor, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// NameForColumn returns the public name of a storage column.
func (s *Schema) NameForColumn(column string) (string, bool) {
	n, ok := s.byColumn[column]
	return n, ok
}

func (s *Schema) index() error {
	if s.Table == "" {
		return fmt.Errorf("schema: table is required")
	}
	s.byName = make(map[string]FieldDescriptor, len(s.Fields))
	s.byColumn = make(map[string]string, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("schema: field #%d has no name", i)
		}
		if f.Column == "" {
			f.Column = f.Name
		}
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		s.byName[f.Name] = *f
		s.byColumn[f.Column] = f.Name
	}
	return nil
}
