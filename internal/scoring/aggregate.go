package scoring

import (
	"maps"
	"math"
	"slices"
	"strconv"
)

// Attribute is one scored trait. A nil Score means the trait could not be assessed.
type Attribute struct {
	Name      string   `json:"name"`
	Score     *float64 `json:"score"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// Category is the aggregation input for one beauty category.
// Unusable categories are excluded from every aggregate.
type Category struct {
	Attributes []Attribute
	Unusable   bool
}

// Summary is the aggregation output.
type Summary struct {
	Overall    float64            `json:"overall_score"`
	Categories map[string]float64 `json:"category_scores"`
}

// Round rounds the exact binary value of x to two decimals. Only exact ties
// go to the even neighbour, so 2.675 (stored just below) becomes 2.67.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return r
}

// CategoryScore is the mean of the non-nil attribute scores, or 0 if there are none.
func CategoryScore(attrs []Attribute) float64 {
	var sum float64
	var n int
	for _, a := range attrs {
		if a.Score == nil {
			continue
		}
		sum += *a.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return Round(sum / float64(n))
}

// Overall is the weighted mean of the non-nil attribute scores under gender,
// or 0 if the total weight is 0.
func (t *Table) Overall(attrs []Attribute, gender Gender) float64 {
	var weighted, total float64
	for _, a := range attrs {
		if a.Score == nil {
			continue
		}
		w := float64(t.Weight(a.Name, gender))
		weighted += *a.Score * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return Round(weighted / total)
}

// Aggregate computes per-category scores and the overall score across all
// usable categories. Categories are visited in name order so the floating
// point sum is deterministic.
func (t *Table) Aggregate(categories map[string]Category, gender Gender) Summary {
	summary := Summary{Categories: make(map[string]float64, len(categories))}

	var all []Attribute
	for _, name := range slices.Sorted(maps.Keys(categories)) {
		c := categories[name]
		if c.Unusable {
			summary.Categories[name] = 0
			continue
		}
		summary.Categories[name] = CategoryScore(c.Attributes)
		all = append(all, c.Attributes...)
	}

	summary.Overall = t.Overall(all, gender)
	return summary
}

// Difference returns |a-b| rounded to two decimals.
func Difference(a, b float64) float64 {
	return Round(math.Abs(a - b))
}
