package training

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

const smallCSV = `url,city,beds,size,price
u1,Mumbai,2,1000 sqft,200000
u2,Delhi,,800-1200 sqft,300000
u3,,3,500,400000
u4,Mumbai,1,abc,500000
u5,Pune,2,900,50000
u6,Pune,4,1500,10000000
`

func mustRead(t *testing.T, data string) *Dataset {
	t.Helper()
	ds, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	return ds
}

func TestReadCSV(t *testing.T) {
	ds := mustRead(t, "a,b,c\n1,x,\n2.5,NaN,3\n4\n")

	if !reflect.DeepEqual(ds.Columns, []string{"a", "b", "c"}) {
		t.Errorf("Columns = %v", ds.Columns)
	}
	if ds.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ds.Len())
	}
	if ds.Rows[1]["b"] != nil || ds.Rows[0]["c"] != nil || ds.Rows[2]["b"] != nil {
		t.Errorf("missing cells should be nil: %v", ds.Rows)
	}
	if !ds.IsNumeric("a") || ds.IsNumeric("b") || !ds.IsNumeric("c") {
		t.Errorf("numeric = a:%v b:%v c:%v", ds.IsNumeric("a"), ds.IsNumeric("b"), ds.IsNumeric("c"))
	}
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	ds := mustRead(t, "\uFEFFcity,price\nMumbai,200000\n")

	if ds.Columns[0] != "city" || !ds.Has("city") {
		t.Errorf("Columns = %q, byte order mark should be stripped", ds.Columns)
	}
	if ds.Rows[0]["city"] != "Mumbai" {
		t.Errorf("Rows = %v", ds.Rows)
	}
}

func TestReadCSV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"duplicate column", "a,a\n1,2\n"},
		{"blank column", "a,\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.data)); err == nil {
				t.Error("ReadCSV() should fail")
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	p, err := Preprocess(mustRead(t, smallCSV), DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess() error: %v", err)
	}

	if p.TargetColumn != "price" || p.SizeFeature != "size" {
		t.Errorf("target = %q, size = %q", p.TargetColumn, p.SizeFeature)
	}
	if !reflect.DeepEqual(p.FeatureNames, []string{"city", "beds", "size"}) {
		t.Errorf("FeatureNames = %v", p.FeatureNames)
	}

	// u4 (bad size), u5 (cheap) and u6 (above the 95th percentile) are dropped
	if p.Rows != 6 || p.Dropped != 3 || len(p.Records) != 3 {
		t.Fatalf("rows = %d, dropped = %d, kept = %d", p.Rows, p.Dropped, len(p.Records))
	}
	if math.Abs(p.PriceCeiling-8560000) > 1e-6 {
		t.Errorf("PriceCeiling = %v, want 8560000", p.PriceCeiling)
	}
	if !reflect.DeepEqual(p.Targets, []float64{200000, 300000, 400000}) {
		t.Errorf("Targets = %v", p.Targets)
	}

	if p.NumericFill["beds"] != 2.5 || p.NumericFill["size"] != 1000 {
		t.Errorf("NumericFill = %v", p.NumericFill)
	}
	// Delhi and Mumbai tie; the smaller value wins
	if p.CategoricalFill["city"] != "Delhi" {
		t.Errorf("CategoricalFill = %v", p.CategoricalFill)
	}
	if !reflect.DeepEqual(p.Classes["city"], []string{"Delhi", "Mumbai"}) {
		t.Errorf("Classes = %v", p.Classes)
	}

	if p.Records[1]["beds"] != 2.5 || p.Records[2]["city"] != "Delhi" {
		t.Errorf("fill not applied: %v", p.Records)
	}
	if p.Records[1]["size"] != "800-1200 sqft" {
		t.Errorf("size text should be kept raw, got %v", p.Records[1]["size"])
	}
}

func TestPreprocess_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"nothing left", "size,price\n100,10\n"},
		{"text target", "size,price\n100,cheap\n"},
		{"single column", "price\n200000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Preprocess(mustRead(t, tt.data), DefaultPreprocessOptions()); err == nil {
				t.Error("Preprocess() should fail")
			}
		})
	}
}

func TestEncode(t *testing.T) {
	p, err := Preprocess(mustRead(t, smallCSV), DefaultPreprocessOptions())
	if err != nil {
		t.Fatal(err)
	}
	x, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	want := [][]float64{
		{1, 2, 1000},
		{0, 2.5, 1000},
		{0, 3, 500},
	}
	if !reflect.DeepEqual(x, want) {
		t.Errorf("Encode() = %v, want %v", x, want)
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		values []float64
		q      float64
		want   float64
	}{
		{[]float64{5}, 0.5, 5},
		{[]float64{1, 2, 3, 4}, 0.5, 2.5},
		{[]float64{3, 1, 2}, 0.5, 2},
		{[]float64{0, 10}, 0.25, 2.5},
		{[]float64{1, 2, 3}, 1, 3},
	}
	for _, tt := range tests {
		if got := quantile(tt.values, tt.q); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("quantile(%v, %v) = %v, want %v", tt.values, tt.q, got, tt.want)
		}
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		values []string
		want   string
	}{
		{nil, UnknownCategory},
		{[]string{"b", "a", "b"}, "b"},
		{[]string{"b", "a"}, "a"},
	}
	for _, tt := range tests {
		if got := mode(tt.values); got != tt.want {
			t.Errorf("mode(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestBuildNeighborhoodMap(t *testing.T) {
	ds := mustRead(t, "city,neighborhood\n Mumbai ,Bandra \nMumbai,Andheri\nMumbai,nan\nDelhi,\n,Orphan\nMumbai,Bandra\n")

	got := BuildNeighborhoodMap(ds, "city", "neighborhood")
	want := map[string][]string{
		"Mumbai": {"Andheri", "Bandra"},
		"Delhi":  {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildNeighborhoodMap() = %v, want %v", got, want)
	}

	if m := BuildNeighborhoodMap(ds, "city", "missing"); len(m) != 0 {
		t.Errorf("missing column should give an empty map, got %v", m)
	}
}
