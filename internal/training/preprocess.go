package training

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
)

// ErrNoTrainingRows is returned when cleaning leaves nothing to train on
var ErrNoTrainingRows = errors.New("no rows left after cleaning")

// UnknownCategory fills a categorical column that has no present values
const UnknownCategory = "Unknown"

// PreprocessOptions controls row cleaning
type PreprocessOptions struct {
	// DropColumns are removed before anything else
	DropColumns []string
	// SizeFeature is parsed with the serving size parser
	SizeFeature string
	// MinPrice drops rows priced below it
	MinPrice float64
	// PriceQuantile drops rows priced above this quantile of the remaining rows
	PriceQuantile float64
}

// DefaultPreprocessOptions returns the cleaning rules for the listings dataset
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		DropColumns:   []string{"url", "date"},
		SizeFeature:   "size",
		MinPrice:      100000,
		PriceQuantile: 0.95,
	}
}

// Prepared is a cleaned, filled table ready for encoding. Records keep the
// raw size text so the serving size parser sees the same input at both ends.
type Prepared struct {
	FeatureNames    []string
	TargetColumn    string
	SizeFeature     string
	Records         []features.Record
	Targets         []float64
	NumericFill     map[string]float64
	CategoricalFill map[string]string
	// Classes are the sorted distinct values of each categorical feature
	Classes      map[string][]string
	Rows         int
	Dropped      int
	PriceCeiling float64
}

// Preprocess cleans ds and fits fill values and categorical classes
func Preprocess(ds *Dataset, opts PreprocessOptions) (*Prepared, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}

	drop := make(map[string]bool, len(opts.DropColumns))
	for _, c := range opts.DropColumns {
		drop[c] = true
	}
	var columns []string
	for _, c := range ds.Columns {
		if !drop[c] {
			columns = append(columns, c)
		}
	}
	if len(columns) < 2 {
		return nil, fmt.Errorf("dataset needs a target and at least one feature, has %v", columns)
	}

	target := targetColumn(columns)
	if !ds.IsNumeric(target) {
		return nil, fmt.Errorf("target column %q is not numeric", target)
	}

	sizeFeature := ""
	if opts.SizeFeature != "" && ds.Has(opts.SizeFeature) && !drop[opts.SizeFeature] && opts.SizeFeature != target {
		sizeFeature = opts.SizeFeature
	}

	// Row filters: minimum price, positive size
	type row struct {
		rec   features.Record
		price float64
		size  float64
	}
	var kept []row
	for _, rec := range ds.Rows {
		price, ok := cellNumber(rec[target])
		if !ok || price < opts.MinPrice {
			continue
		}
		var size float64
		if sizeFeature != "" {
			size, _ = features.ParseSizeValue(rec[sizeFeature])
			if size <= 0 {
				continue
			}
		}
		kept = append(kept, row{rec: rec, price: price, size: size})
	}
	if len(kept) == 0 {
		return nil, ErrNoTrainingRows
	}

	// Outlier trim above the price quantile
	prices := make([]float64, len(kept))
	for i, r := range kept {
		prices[i] = r.price
	}
	ceiling := math.Inf(1)
	if opts.PriceQuantile > 0 && opts.PriceQuantile < 1 {
		ceiling = quantile(prices, opts.PriceQuantile)
		trimmed := kept[:0]
		for _, r := range kept {
			if r.price <= ceiling {
				trimmed = append(trimmed, r)
			}
		}
		kept = trimmed
	}

	p := &Prepared{
		TargetColumn:    target,
		SizeFeature:     sizeFeature,
		NumericFill:     map[string]float64{},
		CategoricalFill: map[string]string{},
		Classes:         map[string][]string{},
		Rows:            ds.Len(),
		Dropped:         ds.Len() - len(kept),
		PriceCeiling:    ceiling,
	}
	for _, c := range columns {
		if c != target {
			p.FeatureNames = append(p.FeatureNames, c)
		}
	}

	p.Records = make([]features.Record, len(kept))
	p.Targets = make([]float64, len(kept))
	for i, r := range kept {
		p.Records[i] = make(features.Record, len(p.FeatureNames))
		p.Targets[i] = r.price
	}

	for _, name := range p.FeatureNames {
		switch {
		case name == sizeFeature:
			sizes := make([]float64, len(kept))
			for i, r := range kept {
				sizes[i] = r.size
				p.Records[i][name] = r.rec[name]
			}
			p.NumericFill[name] = quantile(sizes, 0.5)

		case ds.IsNumeric(name):
			var present []float64
			for _, r := range kept {
				if v, ok := cellNumber(r.rec[name]); ok {
					present = append(present, v)
				}
			}
			fill := 0.0
			if len(present) > 0 {
				fill = quantile(present, 0.5)
			}
			p.NumericFill[name] = fill
			for i, r := range kept {
				v, ok := cellNumber(r.rec[name])
				if !ok {
					v = fill
				}
				p.Records[i][name] = v
			}

		default:
			var present []string
			for _, r := range kept {
				if s, ok := r.rec[name].(string); ok {
					present = append(present, s)
				}
			}
			fill := mode(present)
			p.CategoricalFill[name] = fill
			distinct := map[string]bool{}
			for i, r := range kept {
				s, ok := r.rec[name].(string)
				if !ok {
					s = fill
				}
				p.Records[i][name] = s
				distinct[s] = true
			}
			classes := make([]string, 0, len(distinct))
			for s := range distinct {
				classes = append(classes, s)
			}
			sort.Strings(classes)
			p.Classes[name] = classes
		}
	}

	return p, nil
}

// targetColumn is the first column whose name mentions price, else the last
func targetColumn(columns []string) string {
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), "price") {
			return c
		}
	}
	return columns[len(columns)-1]
}

// quantile returns the q-th quantile with linear interpolation between
// order statistics. values must be non-empty; it is not modified.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// mode returns the most frequent value; ties go to the smallest
func mode(values []string) string {
	if len(values) == 0 {
		return UnknownCategory
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// BuildNeighborhoodMap maps each city to its sorted distinct neighborhoods.
// Values are trimmed; missing ones are skipped.
func BuildNeighborhoodMap(ds *Dataset, cityColumn, neighborhoodColumn string) map[string][]string {
	sets := map[string]map[string]bool{}
	if ds == nil || !ds.Has(cityColumn) || !ds.Has(neighborhoodColumn) {
		return map[string][]string{}
	}

	for _, rec := range ds.Rows {
		city, ok := rec[cityColumn].(string)
		if !ok || strings.TrimSpace(city) == "" {
			continue
		}
		city = strings.TrimSpace(city)
		if sets[city] == nil {
			sets[city] = map[string]bool{}
		}
		n, ok := rec[neighborhoodColumn].(string)
		n = strings.TrimSpace(n)
		if !ok || n == "" || strings.EqualFold(n, "nan") {
			continue
		}
		sets[city][n] = true
	}

	out := make(map[string][]string, len(sets))
	for city, set := range sets {
		list := make([]string, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Strings(list)
		out[city] = list
	}
	return out
}
