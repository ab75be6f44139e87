package ui

import (
	"strings"
	"testing"

	"dineright/internal/model"
	"dineright/internal/relation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []model.Restaurant {
	return []model.Restaurant{
		{ID: 1, Name: "Trattoria Roma", Location: "Dublin", Cuisine: "Italian", PriceLevel: 2, AggregateRating: 4.5},
		{ID: 2, Name: "Golden Dragon", Location: "Dublin", Cuisine: "Chinese", PriceLevel: 1, AggregateRating: 3.9},
		{ID: 3, Name: "Spice Route", Location: "Cork", Cuisine: "Indian", PriceLevel: 3, AggregateRating: 4.8},
	}
}

func names(t *RestaurantTable) []string {
	var out []string
	for _, r := range t.rows {
		out = append(out, r.Name)
	}
	return out
}

func TestRestaurantTableSortByRating(t *testing.T) {
	table := NewRestaurantTable(sampleRows(), "empty")
	for table.columns[table.activeColumn].key != "rating" {
		table.NextColumn()
	}

	table.SortActiveColumn(true)
	assert.Equal(t, []string{"Spice Route", "Trattoria Roma", "Golden Dragon"}, names(table))

	table.SortActiveColumn(false)
	assert.Equal(t, []string{"Golden Dragon", "Trattoria Roma", "Spice Route"}, names(table))
}

func TestRestaurantTableFilterBySelectedValue(t *testing.T) {
	table := NewRestaurantTable(sampleRows(), "empty")
	for table.columns[table.activeColumn].key != "location" {
		table.NextColumn()
	}

	require.True(t, table.FilterBySelectedValue())
	assert.Equal(t, 2, table.Len())

	// New rows keep the filter.
	table.SetRows(append(sampleRows(), model.Restaurant{ID: 4, Name: "Chez Nous", Location: "dublin", Cuisine: "French"}))
	assert.Equal(t, 3, table.Len())

	require.True(t, table.ClearFilter())
	assert.Equal(t, 4, table.Len())
	assert.False(t, table.ClearFilter())
}

func TestRestaurantTableKeepsSelectionAcrossSetRows(t *testing.T) {
	table := NewRestaurantTable(sampleRows(), "empty")
	table.MoveDown()
	selected, ok := table.Selected()
	require.True(t, ok)
	require.Equal(t, int64(2), selected.ID)

	rows := sampleRows()
	rows[0], rows[1] = rows[1], rows[0]
	table.SetRows(rows)

	selected, ok = table.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
}

func TestRestaurantTableHideColumns(t *testing.T) {
	table := NewRestaurantTable(sampleRows(), "empty")
	visible := len(table.visibleColumnIndexes())

	require.True(t, table.HideActiveColumn())
	assert.Len(t, table.visibleColumnIndexes(), visible-1)

	for table.HideActiveColumn() {
	}
	assert.Len(t, table.visibleColumnIndexes(), 1)

	table.ShowAllColumns()
	assert.Len(t, table.visibleColumnIndexes(), visible)
}

func TestRestaurantTablePrefsRoundTrip(t *testing.T) {
	table := NewRestaurantTable(sampleRows(), "empty")
	table.NextColumn()
	table.SortActiveColumn(true)
	table.HideActiveColumn()

	restored := NewRestaurantTable(sampleRows(), "empty")
	restored.ApplyPrefs(table.Prefs())
	assert.Equal(t, names(table), names(restored))
	assert.Equal(t, table.Prefs(), restored.Prefs())
}

func TestRelationMarker(t *testing.T) {
	assert.Empty(t, strings.TrimSpace(relationMarker(relation.State{})))

	st := relation.State{Wishlist: relation.Flag{Set: true}}
	assert.NotEmpty(t, relationMarker(st))

	pending := relation.State{Visited: relation.Flag{Set: true, PendingOp: relation.OpAdd, Sync: relation.Pending}}
	assert.NotEqual(t, relationMarker(st), relationMarker(pending))
}

func TestRestaurantTableViewEmpty(t *testing.T) {
	table := NewRestaurantTable(nil, "Nothing here yet")
	assert.Contains(t, table.View(80, 10), "Nothing here yet")
}
