package ui

import (
	"fmt"

	"dineright/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RecommendationsModel is the "For You" screen. Recommendations the catalog
// does not hold are counted but not listed.
type RecommendationsModel struct {
	table   *RestaurantTable
	refs    []model.RestaurantRef
	loaded  bool
	loading bool
	total   int
	shown   int
}

// NewRecommendationsModel creates an empty screen.
func NewRecommendationsModel() *RecommendationsModel {
	return &RecommendationsModel{
		table: NewRestaurantTable(nil, "No recommendations yet. Save your preferences with p, then ctrl+r."),
	}
}

// SetLoading marks a fetch in progress.
func (m *RecommendationsModel) SetLoading() {
	m.loading = true
}

// Set shows refs, resolved to catalog entries.
func (m *RecommendationsModel) Set(refs []model.RestaurantRef, resolved []model.Restaurant) {
	m.loaded = true
	m.loading = false
	m.refs = refs
	m.total = len(refs)
	m.shown = len(resolved)
	m.table.SetRows(resolved)
}

// Table returns the recommendation table.
func (m *RecommendationsModel) Table() *RestaurantTable {
	return m.table
}

// View renders the screen.
func (m *RecommendationsModel) View(width, height int, spinner string) string {
	if m.loading && !m.loaded {
		return EmptyStateStyle.Width(width).Height(height).Render(spinner + " Finding places for you…")
	}

	note := ""
	if missing := m.total - m.shown; missing > 0 {
		note = HelpDescStyle.Render(fmt.Sprintf("  %d recommended places are not in the catalog yet.", missing))
	}
	if note == "" {
		return m.table.View(width, height)
	}
	return lipgloss.JoinVertical(lipgloss.Left, note, m.table.View(width, max(1, height-1)))
}
