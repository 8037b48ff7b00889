package features

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "Plain number with unit", input: "1200 sqft", want: 1200},
		{name: "Upper case unit", input: "1200 SQFT", want: 1200},
		{name: "Mixed case unit no space", input: "950SqFt", want: 950},
		{name: "Surrounding whitespace", input: "   640 sqft   ", want: 640},
		{name: "No unit", input: "1000", want: 1000},
		{name: "Decimal", input: "850.5 sqft", want: 850.5},
		{name: "Range", input: "799-1258 sqft", want: 1028.5},
		{name: "Range with spaces", input: "1000 - 2000 sqft", want: 1500},
		{name: "Empty", input: "", want: 0},
		{name: "Only unit", input: " sqft ", want: 0},
		{name: "Garbage", input: "large", want: 0},
		{name: "Open range", input: "1000- sqft", want: 0},
		{name: "Negative looks like range", input: "-500", want: 0},
		{name: "NaN text", input: "NaN", want: 0},
		{name: "Infinity text", input: "inf sqft", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.want {
				t.Errorf("ParseSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSize_RangeIsMean(t *testing.T) {
	pairs := [][2]float64{{0, 0}, {1, 2}, {799, 1258}, {100.25, 300.75}, {5000, 5000}}
	for _, p := range pairs {
		got := ParseSize(formatBound(p[0]) + "-" + formatBound(p[1]) + " sqft")
		if want := (p[0] + p[1]) / 2; got != want {
			t.Errorf("range %v-%v = %v, want %v", p[0], p[1], got, want)
		}
	}
}

func TestParseSizeValue(t *testing.T) {
	s := "700 sqft"
	var nilStr *string

	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{name: "String", input: "700 sqft", want: 700, wantOK: true},
		{name: "String pointer", input: &s, want: 700, wantOK: true},
		{name: "Nil", input: nil, want: 0, wantOK: true},
		{name: "Nil string pointer", input: nilStr, want: 0, wantOK: true},
		{name: "Empty string", input: "", want: 0, wantOK: true},
		{name: "Number is not a size string", input: 700, want: 0, wantOK: false},
		{name: "Float is not a size string", input: 700.0, want: 0, wantOK: false},
		{name: "Garbage", input: "n/a", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSizeValue(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseSizeValue(%v) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func formatBound(f float64) string {
	return formatFloat(f)
}
