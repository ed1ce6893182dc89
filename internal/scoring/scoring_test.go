package scoring_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/camelrate/internal/scoring"
)

func score(v float64) *float64 { return &v }

func TestWeight(t *testing.T) {
	table := scoring.DefaultTable()

	tests := []struct {
		attr   string
		gender scoring.Gender
		want   int
	}{
		{"HEAD SIZE", scoring.GenderUnknown, 5},
		{"head size", scoring.GenderMale, 5},
		{"LIP LENGTH", scoring.GenderFemale, 3},
		{"NECK MASS", scoring.GenderUnknown, 1},
		{"BONE THICKNESS", scoring.GenderMale, 5},
		{"BONE THICKNESS", scoring.GenderFemale, 1},
		{"BONE THICKNESS", scoring.GenderUnknown, 3},
		{"TAIL FLUFFINESS", scoring.GenderMale, scoring.DefaultWeight},
	}

	for _, tt := range tests {
		t.Run(tt.attr+"/"+string(tt.gender), func(t *testing.T) {
			if got := table.Weight(tt.attr, tt.gender); got != tt.want {
				t.Errorf("Weight(%q, %s) = %d, want %d", tt.attr, tt.gender, got, tt.want)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	table := scoring.DefaultTable()
	attrs := []scoring.Attribute{
		{Name: "BONE THICKNESS", Score: score(10)},
		{Name: "LIP LENGTH", Score: score(5)},
	}

	tests := []struct {
		gender scoring.Gender
		want   float64
	}{
		// (10*5 + 5*3) / 8 = 8.125, ties round to even
		{scoring.GenderMale, 8.12},
		// (10*1 + 5*3) / 4
		{scoring.GenderFemale, 6.25},
		// (10*3 + 5*3) / 6
		{scoring.GenderUnknown, 7.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.gender), func(t *testing.T) {
			if got := table.Overall(attrs, tt.gender); got != tt.want {
				t.Errorf("Overall = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("null scores are ignored", func(t *testing.T) {
		got := table.Overall(append(attrs, scoring.Attribute{Name: "HEAD SIZE"}), scoring.GenderUnknown)
		if got != 7.5 {
			t.Errorf("Overall = %v, want 7.5", got)
		}
	})

	t.Run("zero total weight yields zero", func(t *testing.T) {
		if got := table.Overall([]scoring.Attribute{{Name: "HEAD SIZE"}}, scoring.GenderMale); got != 0 {
			t.Errorf("Overall = %v, want 0", got)
		}
		if got := table.Overall(nil, scoring.GenderMale); got != 0 {
			t.Errorf("Overall(nil) = %v, want 0", got)
		}
	})
}

func TestCategoryScore(t *testing.T) {
	tests := []struct {
		name  string
		attrs []scoring.Attribute
		want  float64
	}{
		{"mean", []scoring.Attribute{{Score: score(7)}, {Score: score(8)}}, 7.5},
		{"skips null", []scoring.Attribute{{Score: score(9)}, {Score: nil}}, 9},
		{"rounds", []scoring.Attribute{{Score: score(7)}, {Score: score(8)}, {Score: score(8)}}, 7.67},
		{"empty", nil, 0},
		{"all null", []scoring.Attribute{{Score: nil}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.CategoryScore(tt.attrs); got != tt.want {
				t.Errorf("CategoryScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	table := scoring.DefaultTable()

	summary := table.Aggregate(map[string]scoring.Category{
		"head": {Attributes: []scoring.Attribute{{Name: "HEAD SIZE", Score: score(8)}}},
		"legs": {Attributes: []scoring.Attribute{{Name: "LEG STRAIGHTNESS", Score: score(6)}}},
		"neck": {Unusable: true, Attributes: []scoring.Attribute{{Name: "NECK LENGTH", Score: score(1)}}},
		"body": {},
	}, scoring.GenderUnknown)

	// (8*5 + 6*3) / 8 = 7.25
	if summary.Overall != 7.25 {
		t.Errorf("overall = %v, want 7.25", summary.Overall)
	}

	want := map[string]float64{"head": 8, "legs": 6, "neck": 0, "body": 0}
	for name, w := range want {
		if got, ok := summary.Categories[name]; !ok || got != w {
			t.Errorf("category %s = %v (present %v), want %v", name, got, ok, w)
		}
	}
}

func TestNewTableOverrides(t *testing.T) {
	table, err := scoring.NewTable(
		map[string]int{"hump position": 5},
		map[string]map[string]int{"NECK MASS": {"MALE": 3}},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := table.Weight("HUMP POSITION", scoring.GenderUnknown); got != 5 {
		t.Errorf("override base weight = %d, want 5", got)
	}
	if got := table.Weight("NECK MASS", scoring.GenderMale); got != 3 {
		t.Errorf("override gender weight = %d, want 3", got)
	}
	if got := table.Weight("NECK MASS", scoring.GenderFemale); got != 1 {
		t.Errorf("female neck mass = %d, want base 1", got)
	}

	if _, err := scoring.NewTable(map[string]int{"HEAD SIZE": 4}, nil); err == nil {
		t.Error("expected error for weight outside {1,3,5}")
	}
	if _, err := scoring.NewTable(nil, map[string]map[string]int{"HEAD SIZE": {"unknown": 5}}); err == nil {
		t.Error("expected error for unknown gender override")
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in      string
		want    scoring.Gender
		wantErr bool
	}{
		{"", scoring.GenderUnknown, false},
		{"Male", scoring.GenderMale, false},
		{"FEMALE", scoring.GenderFemale, false},
		{"unknown", scoring.GenderUnknown, false},
		{"camel", scoring.GenderUnknown, true},
	}

	for _, tt := range tests {
		got, err := scoring.ParseGender(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGender(%q) error = %v", tt.in, err)
		}
		if tt.wantErr && !errors.Is(err, scoring.ErrInvalidGender) {
			t.Errorf("ParseGender(%q) error = %v, want ErrInvalidGender", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseGender(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDifference(t *testing.T) {
	if got := scoring.Difference(6.25, 8.12); got != 1.87 {
		t.Errorf("Difference = %v, want 1.87", got)
	}
	if got := scoring.Difference(8.12, 6.25); got != 1.87 {
		t.Errorf("Difference is not symmetric: %v", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{8.125, 8.12},
		{0.125, 0.12},
		{0.375, 0.38},
		{2.675, 2.67},
		{1.005, 1},
		{7.5, 7.5},
		{6.666666, 6.67},
		{-2.675, -2.67},
	}
	for _, tt := range tests {
		if got := scoring.Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
