package features

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := NewBank(map[string][]string{
		"city": {"Bangalore", "Chennai", "Mumbai", "Pune"},
		"type": {"Apartment", "Independent House", "Villa"},
		"beds": {"1", "2", "3"},
	})
	if err != nil {
		t.Fatalf("NewBank failed: %v", err)
	}
	return bank
}

func TestNewEncoder_Invalid(t *testing.T) {
	if _, err := NewEncoder(nil); err == nil {
		t.Error("Expected error for encoder without classes")
	}
	if _, err := NewEncoder([]string{"a", "b", "a"}); err == nil {
		t.Error("Expected error for duplicate classes")
	}
	if _, err := NewBank(map[string][]string{"city": {}}); err == nil {
		t.Error("Expected NewBank to reject an empty encoder")
	}
}

func TestBank_Encode(t *testing.T) {
	bank := testBank(t)

	tests := []struct {
		name      string
		feature   string
		value     any
		wantCode  int
		wantKnown bool
	}{
		{name: "First class", feature: "city", value: "Bangalore", wantCode: 0, wantKnown: true},
		{name: "Known city", feature: "city", value: "Mumbai", wantCode: 2, wantKnown: true},
		{name: "Known type", feature: "type", value: "Villa", wantCode: 2, wantKnown: true},
		{name: "Unseen city", feature: "city", value: "Atlantis", wantCode: FallbackCode, wantKnown: false},
		{name: "Case sensitive", feature: "city", value: "mumbai", wantCode: FallbackCode, wantKnown: false},
		{name: "Unknown feature", feature: "color", value: "red", wantCode: FallbackCode, wantKnown: false},
		{name: "Int coerced to string", feature: "beds", value: 2, wantCode: 1, wantKnown: true},
		{name: "JSON number coerced", feature: "beds", value: json.Number("3"), wantCode: 2, wantKnown: true},
		{name: "Integral float keeps decimal", feature: "beds", value: 2.0, wantCode: FallbackCode, wantKnown: false},
		{name: "Nil value", feature: "city", value: nil, wantCode: FallbackCode, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, known := bank.Encode(tt.feature, tt.value)
			if code != tt.wantCode || known != tt.wantKnown {
				t.Errorf("Encode(%q, %v) = (%d, %v), want (%d, %v)",
					tt.feature, tt.value, code, known, tt.wantCode, tt.wantKnown)
			}
		})
	}
}

func TestBank_EncodeIsIdempotent(t *testing.T) {
	bank := testBank(t)
	first, _ := bank.Encode("city", "Pune")
	for i := 0; i < 100; i++ {
		if code, _ := bank.Encode("city", "Pune"); code != first {
			t.Fatalf("Encode returned %d on call %d, want %d", code, i, first)
		}
	}
}

func TestBank_KnownCategories(t *testing.T) {
	bank := testBank(t)

	got := bank.KnownCategories("type")
	want := []string{"Apartment", "Independent House", "Villa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KnownCategories = %v, want %v", got, want)
	}

	// Mutating the returned slice must not leak into the encoder
	got[0] = "Castle"
	if code, known := bank.Encode("type", "Apartment"); !known || code != 0 {
		t.Errorf("Encoder changed after caller mutation: (%d, %v)", code, known)
	}

	if cats := bank.KnownCategories("missing"); cats != nil {
		t.Errorf("Expected nil for unknown feature, got %v", cats)
	}

	if feats := bank.Features(); !reflect.DeepEqual(feats, []string{"beds", "city", "type"}) {
		t.Errorf("Features = %v", feats)
	}
}

func TestBank_Nil(t *testing.T) {
	var bank *Bank
	if bank.Has("city") {
		t.Error("Nil bank should have no features")
	}
	if code, known := bank.Encode("city", "Mumbai"); code != FallbackCode || known {
		t.Errorf("Nil bank Encode = (%d, %v)", code, known)
	}
}
