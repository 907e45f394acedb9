package listview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeItems(n int) []string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf("item-%02d", i))
	}

	return items
}

func TestNewState(t *testing.T) {
	testCases := []struct {
		name             string
		page             int
		pageSize         int
		expectedPage     int
		expectedPageSize int
	}{
		{name: "defaults applied", page: 0, pageSize: 0, expectedPage: 1, expectedPageSize: DefaultPageSize},
		{name: "negative page floors at one", page: -3, pageSize: 10, expectedPage: 1, expectedPageSize: 10},
		{name: "oversized page size falls back", page: 2, pageSize: 500, expectedPage: 2, expectedPageSize: DefaultPageSize},
		{name: "valid values kept", page: 3, pageSize: 25, expectedPage: 3, expectedPageSize: 25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState("q", tc.page, tc.pageSize)

			assert.Equal(t, "q", s.Query)
			assert.Equal(t, tc.expectedPage, s.Page)
			assert.Equal(t, tc.expectedPageSize, s.PageSize)
		})
	}
}

func TestApplySearch(t *testing.T) {
	s := State{Query: "alice", Page: 3, PageSize: 10}

	t.Run("changed query resets to page one", func(t *testing.T) {
		next := s.ApplySearch("bob")
		assert.Equal(t, "bob", next.Query)
		assert.Equal(t, 1, next.Page)
	})

	t.Run("unchanged query keeps the page", func(t *testing.T) {
		next := s.ApplySearch("alice")
		assert.Equal(t, 3, next.Page)
	})
}

func TestPaginate(t *testing.T) {
	items := makeItems(25)

	t.Run("first page", func(t *testing.T) {
		page := Paginate(items, State{Page: 1, PageSize: 10})

		assert.Len(t, page.Items, 10)
		assert.Equal(t, "item-01", page.Items[0])
		assert.Equal(t, "item-10", page.Items[9])
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 25, page.TotalItems)
		assert.False(t, page.HasPrevPage)
		assert.True(t, page.HasNextPage)
	})

	t.Run("last partial page", func(t *testing.T) {
		page := Paginate(items, State{Page: 3, PageSize: 10})

		assert.Len(t, page.Items, 5)
		assert.Equal(t, "item-21", page.Items[0])
		assert.Equal(t, "item-25", page.Items[4])
		assert.True(t, page.HasPrevPage)
		assert.False(t, page.HasNextPage)
	})

	t.Run("out of range page clamps to last page", func(t *testing.T) {
		page := Paginate(items, State{Page: 9, PageSize: 10})

		assert.Equal(t, 3, page.CurrentPage)
		assert.Len(t, page.Items, 5)
	})

	t.Run("empty input renders a single empty page", func(t *testing.T) {
		page := Paginate([]string{}, State{Page: 1, PageSize: 10})

		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasPrevPage)
		assert.False(t, page.HasNextPage)
	})

	t.Run("exact multiple has no trailing page", func(t *testing.T) {
		page := Paginate(makeItems(20), State{Page: 2, PageSize: 10})

		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Items, 10)
		assert.False(t, page.HasNextPage)
	})
}
