package features

import "fmt"

// Kind tags how a feature position is filled
type Kind int

const (
	// Numeric positions take the request value as a plain number
	Numeric Kind = iota
	// Categorical positions take the trained code from the encoder bank
	Categorical
	// Size positions take the parsed free-text area
	Size
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Size:
		return "size"
	default:
		return "numeric"
	}
}

// Field is one resolved position of the feature schema
type Field struct {
	Name  string
	Index int
	Kind  Kind
}

// Schema is the ordered feature list fixed at training time, with every
// position classified once at load.
type Schema struct {
	fields []Field
}

// NewSchema classifies each feature name: categorical if the bank holds an
// encoder for it, size if it is sizeFeature, numeric otherwise.
func NewSchema(names []string, bank *Bank, sizeFeature string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("feature schema is empty")
	}

	seen := make(map[string]struct{}, len(names))
	fields := make([]Field, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = struct{}{}

		kind := Numeric
		switch {
		case bank.Has(name):
			kind = Categorical
		case name == sizeFeature:
			kind = Size
		}
		fields[i] = Field{Name: name, Index: i, Kind: kind}
	}

	return &Schema{fields: fields}, nil
}

// Len returns the number of features
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns the resolved positions in order
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the feature names in order
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}
