// Package review submits user reviews. Reviews are append-only: there is no
// edit or delete.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
)

const submitTimeout = 10 * time.Second

// MaxCommentLength bounds the comment text.
const MaxCommentLength = 1000

var validate = validator.New()

// Submitter posts a review.
type Submitter interface {
	AddReview(ctx context.Context, r model.NewReview) error
}

// Submit validates r and posts it. Validation failures are ErrInvalidReview
// and never reach the network.
func Submit(ctx context.Context, sub Submitter, r model.NewReview) error {
	r.Comment = strings.TrimSpace(r.Comment)
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidReview, err)
	}
	if len(r.Comment) > MaxCommentLength {
		return fmt.Errorf("%w: comment longer than %d characters", model.ErrInvalidReview, MaxCommentLength)
	}

	if err := sub.AddReview(ctx, r); err != nil {
		return fmt.Errorf("failed to submit review: %w", err)
	}
	return nil
}

// SubmittedMsg reports the outcome of SubmitCmd.
type SubmittedMsg struct {
	UserID       int64
	RestaurantID int64
	Err          error
}

// SubmitCmd runs Submit in the background.
func SubmitCmd(sub Submitter, r model.NewReview) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		return SubmittedMsg{UserID: r.UserID, RestaurantID: r.RestaurantID, Err: Submit(ctx, sub, r)}
	}
}

// Notice describes the outcome for the user.
func (m SubmittedMsg) Notice() model.Notice {
	if m.Err != nil {
		return model.ErrorNotice("Could not post review. Try again.")
	}
	return model.InfoNotice("Review posted")
}
