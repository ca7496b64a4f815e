package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		want     Pagination
		wantNext *int
		wantPrev *int
	}{
		{
			name:  "middle_page",
			page:  2,
			limit: 10,
			total: 25,
			want: Pagination{
				CurrentPage: 2,
				PerPage:     10,
				TotalItems:  25,
				TotalPages:  3,
				HasNextPage: true,
				HasPrevPage: true,
			},
			wantNext: intPtr(3),
			wantPrev: intPtr(1),
		},
		{
			name:  "first_page",
			page:  1,
			limit: 10,
			total: 25,
			want: Pagination{
				CurrentPage: 1,
				PerPage:     10,
				TotalItems:  25,
				TotalPages:  3,
				HasNextPage: true,
			},
			wantNext: intPtr(2),
		},
		{
			name:  "last_page",
			page:  3,
			limit: 10,
			total: 25,
			want: Pagination{
				CurrentPage: 3,
				PerPage:     10,
				TotalItems:  25,
				TotalPages:  3,
				HasPrevPage: true,
			},
			wantPrev: intPtr(2),
		},
		{
			name:  "empty_result",
			page:  1,
			limit: 10,
			total: 0,
			want: Pagination{
				CurrentPage: 1,
				PerPage:     10,
			},
		},
		{
			name:  "exact_multiple",
			page:  2,
			limit: 5,
			total: 10,
			want: Pagination{
				CurrentPage: 2,
				PerPage:     5,
				TotalItems:  10,
				TotalPages:  2,
				HasPrevPage: true,
			},
			wantPrev: intPtr(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.limit, tt.total)

			assert.Equal(t, tt.want.CurrentPage, got.CurrentPage)
			assert.Equal(t, tt.want.PerPage, got.PerPage)
			assert.Equal(t, tt.want.TotalItems, got.TotalItems)
			assert.Equal(t, tt.want.TotalPages, got.TotalPages)
			assert.Equal(t, tt.want.HasNextPage, got.HasNextPage)
			assert.Equal(t, tt.want.HasPrevPage, got.HasPrevPage)
			assert.Equal(t, tt.wantNext, got.NextPage)
			assert.Equal(t, tt.wantPrev, got.PrevPage)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErrs  int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 10},
		{name: "explicit", query: "page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "page_zero", query: "page=0", wantPage: 1, wantLimit: 10, wantErrs: 1},
		{name: "limit_over_cap", query: "limit=101", wantPage: 1, wantLimit: 10, wantErrs: 1},
		{name: "not_numbers", query: "page=a&limit=b", wantPage: 1, wantLimit: 10, wantErrs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			page, limit, errs := parsePagination(values)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestParseObjectID(t *testing.T) {
	valid := primitive.NewObjectID()

	id, ok := parseObjectID(valid.Hex())
	assert.True(t, ok)
	assert.Equal(t, valid, id)

	for _, bad := range []string{"", "short", "zzzzzzzzzzzzzzzzzzzzzzzz", valid.Hex() + "00"} {
		_, ok := parseObjectID(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}

func intPtr(v int) *int {
	return &v
}
