package ui

import (
	"context"
	"fmt"
	"strings"

	"dineright/internal/model"
	"dineright/internal/util"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type cornerTab int

const (
	cornerWishlist cornerTab = iota
	cornerVisited
	cornerReviews
	cornerTabCount
)

func (t cornerTab) String() string {
	switch t {
	case cornerWishlist:
		return "Wishlist"
	case cornerVisited:
		return "Visited"
	default:
		return "My Reviews"
	}
}

// reviewsWrittenMsg carries the signed-in user's reviews.
type reviewsWrittenMsg struct {
	userID  int64
	reviews []model.WrittenReview
	err     error
}

// ReviewLister fetches the reviews a user has written.
type ReviewLister interface {
	ReviewsWritten(ctx context.Context, userID int64) ([]model.WrittenReview, error)
}

func loadReviewsWrittenCmd(l ReviewLister, userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		reviews, err := l.ReviewsWritten(ctx, userID)
		return reviewsWrittenMsg{userID: userID, reviews: reviews, err: err}
	}
}

// CornerModel is My Corner: wishlist, visited places and written reviews.
type CornerModel struct {
	tab      cornerTab
	wishlist *RestaurantTable
	visited  *RestaurantTable

	reviews       []model.WrittenReview
	reviewsLoaded bool
	reviewCursor  int
}

// NewCornerModel creates an empty My Corner.
func NewCornerModel() *CornerModel {
	return &CornerModel{
		wishlist: NewRestaurantTable(nil, "Your wishlist is empty. Press w on a restaurant to save it."),
		visited:  NewRestaurantTable(nil, "No visits yet. Press v on a restaurant you've been to."),
	}
}

// SetMembers replaces the wishlist and visited rows.
func (m *CornerModel) SetMembers(wishlist, visited []model.Restaurant) {
	m.wishlist.SetRows(wishlist)
	m.visited.SetRows(visited)
}

// SetReviews replaces the written reviews.
func (m *CornerModel) SetReviews(reviews []model.WrittenReview) {
	m.reviews = reviews
	m.reviewsLoaded = true
	if m.reviewCursor >= len(reviews) {
		m.reviewCursor = max(0, len(reviews)-1)
	}
}

// Table returns the table of the active tab, or nil on the reviews tab.
func (m *CornerModel) Table() *RestaurantTable {
	switch m.tab {
	case cornerWishlist:
		return m.wishlist
	case cornerVisited:
		return m.visited
	default:
		return nil
	}
}

// SelectedReview returns the review under the cursor on the reviews tab.
func (m *CornerModel) SelectedReview() (model.WrittenReview, bool) {
	if m.tab != cornerReviews || m.reviewCursor >= len(m.reviews) {
		return model.WrittenReview{}, false
	}
	return m.reviews[m.reviewCursor], true
}

func (m *CornerModel) NextTab() {
	m.tab = (m.tab + 1) % cornerTabCount
}

func (m *CornerModel) PrevTab() {
	m.tab = (m.tab + cornerTabCount - 1) % cornerTabCount
}

func (m *CornerModel) MoveDown() {
	if t := m.Table(); t != nil {
		t.MoveDown()
	} else if m.reviewCursor < len(m.reviews)-1 {
		m.reviewCursor++
	}
}

func (m *CornerModel) MoveUp() {
	if t := m.Table(); t != nil {
		t.MoveUp()
	} else if m.reviewCursor > 0 {
		m.reviewCursor--
	}
}

// View renders the active tab.
func (m *CornerModel) View(width, height int) string {
	tabs := make([]string, 0, cornerTabCount)
	for t := cornerTab(0); t < cornerTabCount; t++ {
		label := t.String()
		switch t {
		case cornerWishlist:
			label = fmt.Sprintf("%s (%d)", label, m.wishlist.Len())
		case cornerVisited:
			label = fmt.Sprintf("%s (%d)", label, m.visited.Len())
		}
		style := TabStyle
		if t == m.tab {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(label))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Left, tabs...)
	bodyHeight := max(1, height-lipgloss.Height(bar))

	var body string
	if t := m.Table(); t != nil {
		body = t.View(width, bodyHeight)
	} else {
		body = m.reviewsView(width, bodyHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, body)
}

func (m *CornerModel) reviewsView(width, height int) string {
	if !m.reviewsLoaded {
		return EmptyStateStyle.Width(width).Height(height).Render("Loading your reviews…")
	}
	if len(m.reviews) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render("You haven't written any reviews yet.")
	}

	var lines []string
	for i, rv := range m.reviews {
		line := fmt.Sprintf("%s  %s", util.FormatRatingStars(float64(rv.Rating)), rv.RestaurantName)
		if rv.Comment != "" {
			line += "  " + util.TruncateString(rv.Comment, max(10, width-40))
		}
		style := NormalRowStyle
		if i == m.reviewCursor {
			style = SelectedRowStyle
		}
		lines = append(lines, style.Width(width-2).Render(line))
	}
	return lipgloss.NewStyle().Padding(0, 1).MaxHeight(height).Render(strings.Join(lines, "\n"))
}
