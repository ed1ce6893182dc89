package pagination_test

import (
	"net/url"
	"testing"

	"github.com/JaimeStill/camelrate/pkg/pagination"
)

var cfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestPageRequestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"empty uses defaults", "", 1, 20, 0},
		{"explicit values", "page=3&page_size=10", 3, 10, 20},
		{"clamps page size", "page_size=500", 1, 100, 0},
		{"negative page", "page=-2", 1, 20, 0},
		{"garbage ignored", "page=abc&page_size=xyz", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.page || req.PageSize != tt.pageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.page, tt.pageSize)
			}
			if req.Offset() != tt.offset {
				t.Errorf("offset: got %d, want %d", req.Offset(), tt.offset)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total      int
		pageSize   int
		totalPages int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{95, 10, 10},
	}

	for _, tt := range tests {
		r := pagination.NewPageResult[int](nil, tt.total, 1, tt.pageSize)
		if r.TotalPages != tt.totalPages {
			t.Errorf("total=%d size=%d: pages = %d, want %d", tt.total, tt.pageSize, r.TotalPages, tt.totalPages)
		}
		if r.Data == nil {
			t.Error("data should never be nil")
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	c := pagination.Config{DefaultPageSize: 200, MaxPageSize: 50}
	if err := c.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}

	var d pagination.Config
	if err := d.Finalize(nil); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if d.DefaultPageSize != 25 || d.MaxPageSize != 100 {
		t.Errorf("defaults: got %+v", d)
	}

	t.Setenv("TEST_PAGE_MAX", "40")
	e := pagination.Config{DefaultPageSize: 10}
	if err := e.Finalize(&pagination.Env{MaxPageSize: "TEST_PAGE_MAX"}); err != nil {
		t.Fatalf("env: %v", err)
	}
	if e.MaxPageSize != 40 {
		t.Errorf("max from env: got %d, want 40", e.MaxPageSize)
	}
}
