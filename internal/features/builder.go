package features

import "fmt"

// AnomalyKind classifies a field-level fallback
type AnomalyKind string

const (
	// UnseenCategory is a categorical value absent from the trained classes
	UnseenCategory AnomalyKind = "unseen_category"
	// MalformedValue is a size or numeric value that could not be parsed
	MalformedValue AnomalyKind = "malformed_value"
)

// Anomaly records one field that was absorbed to its default
type Anomaly struct {
	Feature string
	Value   string
	Kind    AnomalyKind
}

// Builder assembles feature vectors in schema order
type Builder struct {
	schema *Schema
	bank   *Bank
}

// NewBuilder creates a builder bound to one schema and encoder bank
func NewBuilder(schema *Schema, bank *Bank) (*Builder, error) {
	if schema == nil || bank == nil {
		return nil, fmt.Errorf("builder needs a schema and an encoder bank")
	}
	return &Builder{schema: schema, bank: bank}, nil
}

// Build returns a vector of exactly schema length. Missing fields default to 0
// (or FallbackCode for categorical positions); unseen categories and
// unparseable values default the same way and are reported as anomalies.
func (b *Builder) Build(rec Record) ([]float64, []Anomaly) {
	vec := make([]float64, b.schema.Len())
	var anomalies []Anomaly

	for _, f := range b.schema.fields {
		raw, present := rec[f.Name]

		switch f.Kind {
		case Categorical:
			if !present || raw == nil {
				vec[f.Index] = FallbackCode
				continue
			}
			code, known := b.bank.Encode(f.Name, raw)
			if !known {
				anomalies = append(anomalies, Anomaly{Feature: f.Name, Value: coerceString(raw), Kind: UnseenCategory})
			}
			vec[f.Index] = float64(code)

		case Size:
			v, ok := ParseSizeValue(raw)
			if !ok {
				anomalies = append(anomalies, Anomaly{Feature: f.Name, Value: coerceString(raw), Kind: MalformedValue})
			}
			vec[f.Index] = v

		default:
			v, ok := toNumber(raw)
			if !ok {
				anomalies = append(anomalies, Anomaly{Feature: f.Name, Value: coerceString(raw), Kind: MalformedValue})
			}
			vec[f.Index] = v
		}
	}

	return vec, anomalies
}
