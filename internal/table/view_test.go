package table

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bank struct {
	Name string `json:"name"`
}

type account struct {
	ID      string          `json:"id"`
	Owner   string          `json:"owner"`
	Balance decimal.Decimal `json:"balance"`
	Opened  time.Time       `json:"openedAt"`
	Rank    int             `json:"rank"`
	Bank    *bank           `json:"bank"`
}

func accountID(a account) string { return a.ID }

func ids(items []account) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.ID)
	}
	return result
}

func fixture() []account {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []account{
		{ID: "a", Owner: "carol", Balance: decimal.RequireFromString("10.50"), Opened: base.Add(3 * time.Hour), Rank: 2, Bank: &bank{Name: "Zeta"}},
		{ID: "b", Owner: "Alice", Balance: decimal.RequireFromString("200"), Opened: base.Add(1 * time.Hour), Rank: 1, Bank: &bank{Name: "alpha"}},
		{ID: "c", Owner: "bob", Balance: decimal.RequireFromString("9.99"), Opened: base.Add(2 * time.Hour), Rank: 2, Bank: nil},
		{ID: "d", Owner: "dave", Balance: decimal.RequireFromString("10.50"), Opened: base, Rank: 3, Bank: &bank{Name: "Mid"}},
	}
}

func TestSortBy(t *testing.T) {
	testCases := []struct {
		testName string
		key      string
		expected []string
	}{
		{testName: "Should sort strings case-insensitively", key: "owner", expected: []string{"b", "c", "a", "d"}},
		{testName: "Should sort decimals numerically", key: "balance", expected: []string{"c", "a", "d", "b"}},
		{testName: "Should sort times chronologically", key: "openedAt", expected: []string{"d", "b", "c", "a"}},
		{testName: "Should sort by field name as well as json tag", key: "Rank", expected: []string{"b", "a", "c", "d"}},
		{testName: "Should sort by nested path with nil first", key: "bank.name", expected: []string{"c", "b", "d", "a"}},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			view := New(fixture(), 10, accountID)
			require.NoError(t, view.SortBy(tc.key))
			assert.Equal(t, tc.expected, ids(view.Rows()))
		})
	}
}

func TestSortByToggleIsExactReverse(t *testing.T) {
	view := New(fixture(), 10, accountID)

	require.NoError(t, view.SortBy("rank"))
	asc := ids(view.Rows())
	assert.Equal(t, []string{"b", "a", "c", "d"}, asc)

	require.NoError(t, view.SortBy("rank"))
	desc := ids(view.Rows())
	assert.Equal(t, []string{"d", "c", "a", "b"}, desc)

	require.NoError(t, view.SortBy("owner"))
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(view.Rows()), "new field resets to ascending")
}

func TestSortByUnknownField(t *testing.T) {
	view := New(fixture(), 10, accountID)

	err := view.SortBy("bank.address")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(view.Rows()))
}

func TestRegisteredSelector(t *testing.T) {
	view := New(fixture(), 10, accountID)
	view.Register("ownerLength", func(a account) any { return len(a.Owner) })

	require.NoError(t, view.SortBy("ownerLength"))
	assert.Equal(t, []string{"c", "d", "a", "b"}, ids(view.Rows()))
}

func TestSearch(t *testing.T) {
	view := New(fixture(), 2, accountID)
	view.Paginate(2)

	view.Search("ALP")
	assert.Equal(t, []string{"b"}, ids(view.Rows()), "nested string fields are searched")
	assert.Equal(t, 1, view.CurrentPage())

	view.Search("a")
	assert.Equal(t, []string{"a", "b", "d"}, ids(view.Rows()), "search always starts from the full source")

	view.Search("")
	assert.Len(t, view.Rows(), 4)
}

func TestPagination(t *testing.T) {
	items := make([]account, 0, 23)
	for i := 0; i < 23; i++ {
		items = append(items, account{ID: fmt.Sprintf("%02d", i)})
	}
	view := New(items, 10, accountID)

	assert.Equal(t, 3, view.TotalPages())

	view.Paginate(99)
	assert.Equal(t, 3, view.CurrentPage())
	page := view.Page()
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 23, page.TotalData)

	view.Next()
	assert.Equal(t, 3, view.CurrentPage())

	view.Paginate(-4)
	assert.Equal(t, 1, view.CurrentPage())
	view.Prev()
	assert.Equal(t, 1, view.CurrentPage())
	view.Next()
	assert.Equal(t, 2, view.CurrentPage())
}

func TestEmptyViewHasOnePage(t *testing.T) {
	view := New[account](nil, 10, accountID)

	assert.Equal(t, 1, view.TotalPages())
	page := view.Page()
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestDelete(t *testing.T) {
	items := make([]account, 0, 11)
	for i := 0; i < 11; i++ {
		items = append(items, account{ID: fmt.Sprintf("%02d", i)})
	}
	view := New(items, 10, accountID)
	view.Paginate(2)

	assert.True(t, view.Delete("10"))
	assert.Equal(t, 1, view.TotalPages())
	assert.Equal(t, 1, view.CurrentPage(), "current page is clamped after delete")
	assert.Equal(t, 10, view.TotalData())

	assert.False(t, view.Delete("missing"))
	assert.Len(t, items, 11, "caller slice is not modified")
}

func TestDeleteRespectsSearch(t *testing.T) {
	view := New(fixture(), 10, accountID)
	view.Search("alice")
	require.Equal(t, 1, view.TotalData())

	assert.False(t, view.Delete("a"), "row hidden by search is not deleted")
	assert.Equal(t, 1, view.TotalData())

	assert.True(t, view.Delete("b"))
	assert.Equal(t, 0, view.TotalData())

	view.Search("")
	assert.Equal(t, []string{"a", "c", "d"}, ids(view.Rows()))
}
