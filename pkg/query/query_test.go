package query_test

import (
	"testing"

	"github.com/JaimeStill/camelrate/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "rating_feedback", "f").
		Project("id", "ID").
		Project("category", "Category").
		Project("status", "Status").
		Project("created_at", "CreatedAt")
}

func ptr(s string) *string { return &s }

func TestProjection(t *testing.T) {
	p := testProjection()

	if got := p.From(); got != "public.rating_feedback f" {
		t.Errorf("From() = %q", got)
	}
	if got := p.Columns(); got != "f.id, f.category, f.status, f.created_at" {
		t.Errorf("Columns() = %q", got)
	}
	if got := p.Column("Status"); got != "f.status" {
		t.Errorf("Column(Status) = %q", got)
	}
	if p.Has("Missing") {
		t.Error("Has(Missing) should be false")
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single asc", "Category", []query.SortField{{Field: "Category"}}},
		{"mixed", "Category, -CreatedAt", []query.SortField{
			{Field: "Category"},
			{Field: "CreatedAt", Descending: true},
		}},
		{"skips blanks", "Category,,", []query.SortField{{Field: "Category"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildPage(t *testing.T) {
	status := "approved"
	qb := query.
		NewBuilder(testProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("Category", ptr("head")).
		WhereEquals("Status", &status).
		WhereEquals("ID", nil)

	sql, args := qb.BuildPage(2, 10)
	want := "SELECT f.id, f.category, f.status, f.created_at FROM public.rating_feedback f" +
		" WHERE f.category = $1 AND f.status = $2 ORDER BY f.created_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, args := query.
		NewBuilder(testProjection()).
		WhereEquals("Category", "neck").
		BuildCount()

	if sql != "SELECT COUNT(*) FROM public.rating_feedback f WHERE f.category = $1" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 || args[0] != "neck" {
		t.Errorf("args = %v", args)
	}
}

func TestOrderByIgnoresUnknownFields(t *testing.T) {
	sql, _ := query.
		NewBuilder(testProjection()).
		OrderByFields(query.ParseSortFields("-CreatedAt,id; DROP TABLE x")).
		Build()

	want := "SELECT f.id, f.category, f.status, f.created_at FROM public.rating_feedback f ORDER BY f.created_at DESC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("ID", 7)
	if sql != "SELECT f.id, f.category, f.status, f.created_at FROM public.rating_feedback f WHERE f.id = $1" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 || args[0] != 7 {
		t.Errorf("args = %v", args)
	}
}

func TestWhereEqualsSkipsNil(t *testing.T) {
	var missing *string
	sql, args := query.NewBuilder(testProjection()).WhereEquals("Status", missing).Build()
	if sql != "SELECT f.id, f.category, f.status, f.created_at FROM public.rating_feedback f" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}
