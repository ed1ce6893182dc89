// Package scoring holds the attribute weight table and the arithmetic that
// turns per-attribute scores into category and overall beauty scores.
package scoring

import (
	"fmt"
	"maps"
	"strings"
)

// DefaultWeight applies to attributes absent from the table.
const DefaultWeight = 3

// Importance levels accepted in weight overrides.
const (
	WeightMinor    = 1
	WeightStandard = 3
	WeightMajor    = 5
)

var baseWeights = map[string]int{
	"HEAD SIZE":               WeightMajor,
	"NECK LENGTH":             WeightMajor,
	"LOWER JAW LENGTH":        WeightMajor,
	"CHEEK WIDTH":             WeightMajor,
	"WITHERS LENGTH":          WeightMajor,
	"LIP LENGTH":              WeightStandard,
	"SNOUT CURVE SCORE":       WeightStandard,
	"EAR SIZE":                WeightStandard,
	"EAR DIRECTION":           WeightStandard,
	"HEAD UPWARD ANGLE":       WeightStandard,
	"HUMP VERTICAL ANGLE":     WeightStandard,
	"HUMP TO RUMP DISTANCE":   WeightStandard,
	"BODY HEIGHT":             WeightStandard,
	"NECK STRAIGHTNESS SCORE": WeightStandard,
	"NECK ANGLE TOP":          WeightStandard,
	"NECK ANGLE BOTTOM":       WeightStandard,
	"BONE THICKNESS":          WeightStandard,
	"LEG STRAIGHTNESS":        WeightStandard,
	"MUSCLE DEFINITION":       WeightStandard,
	"WITHERS LEVELNESS":       WeightMinor,
	"LEG JOINT ANGLE":         WeightMinor,
	"HUMP POSITION":           WeightMinor,
	"NECK MASS":               WeightMinor,
}

var genderWeights = map[string]map[Gender]int{
	"BONE THICKNESS": {
		GenderMale:   WeightMajor,
		GenderFemale: WeightMinor,
	},
}

// Table resolves attribute weights. It is read-only after construction and
// safe for concurrent use.
type Table struct {
	base   map[string]int
	gender map[string]map[Gender]int
}

// DefaultTable returns the built-in weight table.
func DefaultTable() *Table {
	t, _ := NewTable(nil, nil)
	return t
}

// NewTable builds a table from the built-in weights with the given overrides
// applied. Override weights must be 1, 3 or 5; gender keys must be male or female.
func NewTable(base map[string]int, gender map[string]map[string]int) (*Table, error) {
	t := &Table{
		base:   maps.Clone(baseWeights),
		gender: make(map[string]map[Gender]int, len(genderWeights)),
	}
	for name, byGender := range genderWeights {
		t.gender[name] = maps.Clone(byGender)
	}

	for name, w := range base {
		if err := validWeight(w); err != nil {
			return nil, fmt.Errorf("weight %q: %w", name, err)
		}
		t.base[normalize(name)] = w
	}

	for name, byGender := range gender {
		key := normalize(name)
		if t.gender[key] == nil {
			t.gender[key] = make(map[Gender]int, len(byGender))
		}
		for g, w := range byGender {
			parsed, err := ParseGender(g)
			if err != nil || !parsed.Known() {
				return nil, fmt.Errorf("gender weight %q: invalid gender %q", name, g)
			}
			if err := validWeight(w); err != nil {
				return nil, fmt.Errorf("gender weight %q/%s: %w", name, g, err)
			}
			t.gender[key][parsed] = w
		}
	}

	return t, nil
}

// Weight returns the weight of attribute under gender: gender override,
// then base weight, then DefaultWeight.
func (t *Table) Weight(attribute string, gender Gender) int {
	key := normalize(attribute)

	if gender.Known() {
		if w, ok := t.gender[key][gender]; ok {
			return w
		}
	}
	if w, ok := t.base[key]; ok {
		return w
	}
	return DefaultWeight
}

// Weights returns a copy of the weights effective for gender.
func (t *Table) Weights(gender Gender) map[string]int {
	out := maps.Clone(t.base)
	for name := range t.gender {
		out[name] = t.Weight(name, gender)
	}
	return out
}

func normalize(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

func validWeight(w int) error {
	switch w {
	case WeightMinor, WeightStandard, WeightMajor:
		return nil
	default:
		return fmt.Errorf("weight must be 1, 3, or 5, got %d", w)
	}
}
