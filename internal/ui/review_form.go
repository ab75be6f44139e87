package ui

import (
	"fmt"
	"strconv"

	"dineright/internal/model"
	"dineright/internal/review"
	"dineright/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// submitReviewMsg asks the root model to post a review.
type submitReviewMsg struct {
	restaurantID int64
	rating       int
	comment      string
}

const (
	reviewRating = iota
	reviewComment
)

// ReviewFormModel represents the review form.
type ReviewFormModel struct {
	restaurantID   int64
	restaurantName string
	rating         int
	focusedField   int
	comment        textarea.Model
	keys           FormKeyMap
	error          string
}

// NewReviewFormModel creates a new review form for a restaurant.
func NewReviewFormModel(restaurantID int64, restaurantName string) *ReviewFormModel {
	comment := textarea.New()
	comment.Placeholder = "What stood out? (optional)"
	comment.CharLimit = review.MaxCommentLength
	comment.ShowLineNumbers = false
	comment.SetHeight(4)

	return &ReviewFormModel{
		restaurantID:   restaurantID,
		restaurantName: restaurantName,
		focusedField:   reviewRating,
		comment:        comment,
		keys:           DefaultFormKeyMap(),
	}
}

// Update handles input.
func (m ReviewFormModel) Update(msg tea.KeyMsg) (ReviewFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, func() tea.Msg { return model.FormCancelledMsg{} }
	case key.Matches(msg, m.keys.Save):
		return m.submit()
	case msg.String() == "tab" || msg.String() == "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focusedField == reviewRating {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.rating = max(1, m.rating-1)
		case key.Matches(msg, m.keys.Right):
			m.rating = min(5, m.rating+1)
		case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.NextField):
			m.toggleFocus()
		default:
			if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= 5 {
				m.rating = n
				m.error = ""
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

func (m *ReviewFormModel) toggleFocus() {
	if m.focusedField == reviewRating {
		m.focusedField = reviewComment
		m.comment.Focus()
		return
	}
	m.focusedField = reviewRating
	m.comment.Blur()
}

func (m ReviewFormModel) submit() (ReviewFormModel, tea.Cmd) {
	if m.rating < 1 || m.rating > 5 {
		m.error = "Pick a rating from 1 to 5"
		return m, nil
	}
	m.error = ""
	out := submitReviewMsg{
		restaurantID: m.restaurantID,
		rating:       m.rating,
		comment:      m.comment.Value(),
	}
	return m, func() tea.Msg { return out }
}

// View renders the form.
func (m *ReviewFormModel) View(width, height int) string {
	stars := HelpDescStyle.Render("press 1-5")
	if m.rating > 0 {
		stars = RatingStyle.Render(util.FormatRatingStars(float64(m.rating))) + " " +
			NormalRowStyle.Render(fmt.Sprintf("%d/5", m.rating))
	}

	ratingStyle := BorderStyle
	if m.focusedField == reviewRating {
		ratingStyle = ActiveBorderStyle
	}
	ratingField := ratingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render("Rating"), stars))

	commentStyle := BorderStyle
	if m.focusedField == reviewComment {
		commentStyle = ActiveBorderStyle
	}
	m.comment.SetWidth(max(20, min(70, width-12)))
	commentField := commentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render("Comment"), m.comment.View()))

	rows := []string{
		LabelStyle.Render("Review " + m.restaurantName),
		"",
		ratingField,
		commentField,
	}
	if m.error != "" {
		rows = append(rows, ErrorStyle.Render(m.error))
	}

	return PanelStyle.Width(max(30, min(80, width-4))).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
