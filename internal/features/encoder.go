package features

import (
	"fmt"
	"sort"
)

// FallbackCode is returned for category values that were never seen in training
const FallbackCode = 0

// Encoder is a frozen category -> code mapping for one categorical feature.
// Codes are the positions of the classes in training order.
type Encoder struct {
	classes []string
	codes   map[string]int
}

// NewEncoder builds an encoder from the ordered classes learned at training time
func NewEncoder(classes []string) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder has no classes")
	}

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		codes[c] = i
	}

	return &Encoder{
		classes: append([]string(nil), classes...),
		codes:   codes,
	}, nil
}

// Encode returns the trained code for value. known is false for unseen values,
// in which case the code is FallbackCode.
func (e *Encoder) Encode(value string) (code int, known bool) {
	code, known = e.codes[value]
	if !known {
		return FallbackCode, false
	}
	return code, true
}

// Classes returns a copy of the known categories in training order
func (e *Encoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len returns the number of known categories
func (e *Encoder) Len() int {
	return len(e.classes)
}

// Bank holds one encoder per categorical feature. It is read-only after
// construction and safe for concurrent use.
type Bank struct {
	encoders map[string]*Encoder
}

// NewBank builds a bank from feature name -> ordered classes
func NewBank(classes map[string][]string) (*Bank, error) {
	encoders := make(map[string]*Encoder, len(classes))
	for name, cls := range classes {
		enc, err := NewEncoder(cls)
		if err != nil {
			return nil, fmt.Errorf("encoder %q: %w", name, err)
		}
		encoders[name] = enc
	}
	return &Bank{encoders: encoders}, nil
}

// Has reports whether feature is categorical in this bank
func (b *Bank) Has(feature string) bool {
	if b == nil {
		return false
	}
	_, ok := b.encoders[feature]
	return ok
}

// Encode coerces value to a string and maps it through the feature's encoder.
// Unknown features and unseen values both return FallbackCode with known=false.
func (b *Bank) Encode(feature string, value any) (code int, known bool) {
	if b == nil {
		return FallbackCode, false
	}
	enc, ok := b.encoders[feature]
	if !ok {
		return FallbackCode, false
	}
	return enc.Encode(coerceString(value))
}

// KnownCategories returns the ordered categories the feature was trained on,
// or nil if the feature has no encoder.
func (b *Bank) KnownCategories(feature string) []string {
	if b == nil {
		return nil
	}
	enc, ok := b.encoders[feature]
	if !ok {
		return nil
	}
	return enc.Classes()
}

// Features returns the categorical feature names, sorted
func (b *Bank) Features() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.encoders))
	for name := range b.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
