package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dineright/internal/model"
	"dineright/internal/util"

	"github.com/charmbracelet/lipgloss"
)

type restaurantColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// RestaurantTable is the sortable, filterable restaurant list shared by the
// catalog, My Corner and recommendation screens.
type RestaurantTable struct {
	allRows []model.Restaurant
	rows    []model.Restaurant
	cursor  int
	offset  int

	viewportHeight int

	columns      []restaurantColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string

	// marker renders the relationship column; nil leaves it blank.
	marker    func(model.Restaurant) string
	emptyText string
}

// NewRestaurantTable creates a table over rows.
func NewRestaurantTable(rows []model.Restaurant, emptyText string) *RestaurantTable {
	t := &RestaurantTable{
		columns: []restaurantColumn{
			{key: "mark", label: "", width: 4},
			{key: "name", label: "name", width: 24},
			{key: "location", label: "location", width: 16},
			{key: "cuisine", label: "cuisine", width: 14},
			{key: "price", label: "price", width: 6},
			{key: "rating", label: "rating", width: 8},
			{key: "reviews", label: "reviews", width: 8},
		},
		activeColumn: 1,
		emptyText:    emptyText,
	}
	t.SetRows(rows)
	return t
}

// SetRows replaces the rows, keeping sort, filter and, when possible, the
// selected restaurant.
func (m *RestaurantTable) SetRows(rows []model.Restaurant) {
	selected, hadSelection := m.Selected()
	m.allRows = append([]model.Restaurant(nil), rows...)
	m.rebuild()
	if hadSelection {
		for i, r := range m.rows {
			if r.ID == selected.ID {
				m.cursor = i
				m.clampCursor()
				return
			}
		}
	}
}

// SetMarker sets the relationship column renderer.
func (m *RestaurantTable) SetMarker(fn func(model.Restaurant) string) {
	m.marker = fn
}

// Selected returns the restaurant under the cursor.
func (m *RestaurantTable) Selected() (model.Restaurant, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Restaurant{}, false
	}
	return m.rows[m.cursor], true
}

// Len returns the number of visible rows.
func (m *RestaurantTable) Len() int {
	return len(m.rows)
}

func (m *RestaurantTable) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *RestaurantTable) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *RestaurantTable) rebuild() {
	rows := append([]model.Restaurant(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]model.Restaurant, 0, len(rows))
		target := strings.TrimSpace(m.filterValue)
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.getValue(r, m.filterKey)), target) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.getValue(rows[i], m.sortKey))
			right := strings.ToLower(m.getValue(rows[j], m.sortKey))
			if left == right {
				return false
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clampCursor()
}

func (m *RestaurantTable) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// getValue returns a cell's sortable text. Numbers are zero padded so they
// sort as strings.
func (m *RestaurantTable) getValue(r model.Restaurant, key string) string {
	switch key {
	case "mark":
		if m.marker == nil {
			return ""
		}
		return m.marker(r)
	case "name":
		return r.Name
	case "location":
		return r.Location
	case "cuisine":
		return r.Cuisine
	case "price":
		return strconv.Itoa(r.PriceLevel)
	case "rating":
		return fmt.Sprintf("%05.2f", r.AggregateRating)
	case "reviews":
		return fmt.Sprintf("%06d", len(r.Reviews))
	default:
		return ""
	}
}

func (m *RestaurantTable) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *RestaurantTable) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *RestaurantTable) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RestaurantTable) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *RestaurantTable) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

func (m *RestaurantTable) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *RestaurantTable) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

// FilterBySelectedValue keeps only rows whose active-column value equals the
// selected row's.
func (m *RestaurantTable) FilterBySelectedValue() bool {
	r, ok := m.Selected()
	if !ok {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.getValue(r, key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *RestaurantTable) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *RestaurantTable) TableMeta() string {
	col := m.columns[m.activeColumn].label
	if col == "" {
		col = m.columns[m.activeColumn].key
	}
	parts := []string{fmt.Sprintf("col %s", strings.ToUpper(col))}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.filterValue))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *RestaurantTable) cell(r model.Restaurant, col restaurantColumn) string {
	switch col.key {
	case "mark":
		if m.marker == nil {
			return ""
		}
		return m.marker(r)
	case "name":
		return util.TruncateString(r.Name, col.width)
	case "location":
		return util.TruncateString(r.Location, col.width)
	case "cuisine":
		return util.TruncateString(r.Cuisine, col.width)
	case "price":
		return util.FormatPriceLevel(r.PriceLevel)
	case "rating":
		if r.AggregateRating <= 0 {
			return "—"
		}
		return RatingStyle.Render(util.FormatRatingWithStar(r.AggregateRating))
	case "reviews":
		return strconv.Itoa(len(r.Reviews))
	default:
		return ""
	}
}

// View renders the table.
func (m *RestaurantTable) View(width, height int) string {
	if len(m.rows) == 0 {
		text := m.emptyText
		if m.filterKey != "" {
			text = "No rows match the filter. Press N to clear it."
		}
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(text)
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(col.label)
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		sepTotal := (len(widths) - 1) * tableSeparatorWidth()
		extra := width - totalFixed - sepTotal - 2
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.viewportHeight = visibleHeight
	if m.cursor >= m.offset+visibleHeight {
		m.offset = m.cursor - visibleHeight + 1
	}

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		r := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(r, m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	filterInfo := ""
	if m.filterKey != "" {
		filterInfo = fmt.Sprintf("  ·  filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("%s  ·  row %d/%d%s  ·  %s",
		util.Pluralize(len(m.rows), "restaurant"), m.cursor+1, len(m.rows), filterInfo, m.TableMeta()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func (m *RestaurantTable) pageHeight() int {
	if m.viewportHeight == 0 {
		return 10
	}
	return m.viewportHeight
}

// MoveDown moves the cursor down.
func (m *RestaurantTable) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+m.pageHeight() {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *RestaurantTable) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (m *RestaurantTable) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *RestaurantTable) JumpToBottom() {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = len(m.rows) - 1
	if vh := m.pageHeight(); m.cursor >= vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageDown moves down half a page.
func (m *RestaurantTable) HalfPageDown() {
	m.cursor = min(m.cursor+m.pageHeight()/2, len(m.rows)-1)
	m.clampCursor()
	if vh := m.pageHeight(); m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageUp moves up half a page.
func (m *RestaurantTable) HalfPageUp() {
	m.cursor = max(m.cursor-m.pageHeight()/2, 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}
