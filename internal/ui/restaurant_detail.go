package ui

import (
	"fmt"
	"strings"

	"dineright/internal/model"
	"dineright/internal/relation"
	"dineright/internal/util"

	"github.com/charmbracelet/lipgloss"
)

const maxDetailReviews = 8

// RestaurantDetailModel represents the restaurant detail screen.
type RestaurantDetailModel struct {
	restaurant model.Restaurant
}

// NewRestaurantDetailModel creates a new restaurant detail model.
func NewRestaurantDetailModel(r model.Restaurant) *RestaurantDetailModel {
	return &RestaurantDetailModel{restaurant: r}
}

// ID returns the restaurant shown.
func (m *RestaurantDetailModel) ID() int64 {
	return m.restaurant.ID
}

// Name returns the restaurant name for the breadcrumb.
func (m *RestaurantDetailModel) Name() string {
	return m.restaurant.Name
}

// Replace swaps in a refetched copy of the same restaurant.
func (m *RestaurantDetailModel) Replace(r model.Restaurant) {
	if r.ID == m.restaurant.ID {
		m.restaurant = r
	}
}

// View renders the restaurant with the user's relationship st.
func (m *RestaurantDetailModel) View(width, height int, st relation.State) string {
	r := m.restaurant

	shortcuts := HelpDescStyle.Render("w wishlist  v visited  r review  h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	fields := []string{
		renderField("Name", r.Name),
		renderField("Location", r.Location),
		renderField("Cuisine", r.Cuisine),
		renderField("Price", util.FormatPriceLevel(r.PriceLevel)),
		renderField("Atmosphere", r.Atmosphere),
		renderField("Amenities", util.JoinOrDash(r.Amenities)),
		renderField("Phone", r.PhoneNumber),
		LabelStyle.Render("Rating:") + " " +
			RatingStyle.Render(util.FormatRatingStars(r.AggregateRating)) + " " +
			NormalRowStyle.Render(fmt.Sprintf("%s (%s)", util.FormatRating(r.AggregateRating), util.Pluralize(len(r.Reviews), "review"))),
	}
	sections = append(sections, strings.Join(fields, "\n"))

	sections = append(sections, strings.Join([]string{
		renderFlag("Wishlist", "On your wishlist", "Not on your wishlist", st.Wishlist),
		renderFlag("Visited", "You've been here", "Not visited yet", st.Visited),
	}, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if len(r.Reviews) > 0 {
		sections = append(sections, LabelStyle.Render("Reviews:"))
		sections = append(sections, m.renderReviews(width))
	} else {
		sections = append(sections, HelpDescStyle.Render("No reviews yet. Press 'r' to write the first one!"))
	}

	info := PanelStyle.
		Width(width - 4).
		MaxHeight(max(1, height-1)).
		Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

// renderReviews lists the newest reviews first.
func (m *RestaurantDetailModel) renderReviews(width int) string {
	reviews := m.restaurant.Reviews
	var lines []string
	for i := len(reviews) - 1; i >= 0 && len(lines) < maxDetailReviews; i-- {
		rv := reviews[i]
		line := RatingStyle.Render(util.FormatRatingStars(float64(rv.Rating))) + " " +
			LabelStyle.Render(rv.AuthorLabel)
		if rv.Comment != "" {
			line += " " + NormalRowStyle.Render(util.TruncateString(rv.Comment, max(10, width-30)))
		}
		lines = append(lines, line)
	}
	if hidden := len(reviews) - len(lines); hidden > 0 {
		lines = append(lines, HelpDescStyle.Render(fmt.Sprintf("… and %d older", hidden)))
	}
	return strings.Join(lines, "\n")
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}

// renderFlag shows a relationship flag. Pending and failed syncs are marked
// next to the optimistic value.
func renderFlag(label, on, off string, f relation.Flag) string {
	value := NormalRowStyle.Render(off)
	if f.Set {
		value = MemberStyle.Render("✓ " + on)
	}
	switch f.Sync {
	case relation.Pending:
		value += " " + PendingStyle.Render("(saving…)")
	case relation.Failed:
		value += " " + FailedStyle.Render("(not saved)")
	}
	return LabelStyle.Render(label+":") + " " + value
}

// relationMarker renders the compact table marker: ♥ wishlisted, ✓ visited,
// … while either flag is pending.
func relationMarker(st relation.State) string {
	var b strings.Builder
	if st.Wishlisted() {
		b.WriteString(MemberStyle.Render("♥"))
	} else {
		b.WriteString(" ")
	}
	if st.IsVisited() {
		b.WriteString(MemberStyle.Render("✓"))
	} else {
		b.WriteString(" ")
	}
	if st.Wishlist.Sync == relation.Pending || st.Visited.Sync == relation.Pending {
		b.WriteString(PendingStyle.Render("…"))
	}
	return b.String()
}
