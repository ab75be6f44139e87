package relation

import (
	"context"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Lister fetches a user's confirmed membership.
type Lister interface {
	WishlistIDs(ctx context.Context, userID int64) ([]int64, error)
	VisitedIDs(ctx context.Context, userID int64) ([]int64, error)
}

// SyncedMsg carries membership fetched after sign-in. Since is the engine
// Generation when the fetch was issued.
type SyncedMsg struct {
	UserID   int64
	Since    uint64
	Wishlist []int64
	Visited  []int64
	Err      error
}

// SyncCmd fetches both membership lists of userID.
func (e *Engine) SyncCmd(l Lister, userID int64) tea.Cmd {
	since := e.Generation()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		wish, err := l.WishlistIDs(ctx, userID)
		if err != nil {
			return SyncedMsg{UserID: userID, Since: since, Err: err}
		}
		visited, err := l.VisitedIDs(ctx, userID)
		if err != nil {
			return SyncedMsg{UserID: userID, Since: since, Err: err}
		}
		return SyncedMsg{UserID: userID, Since: since, Wishlist: wish, Visited: visited}
	}
}

// ApplySync seeds the engine from msg if it is for the signed-in user.
func (e *Engine) ApplySync(msg SyncedMsg) model.Notice {
	if id, ok := e.identity.UserID(); !ok || id != msg.UserID {
		return model.Notice{}
	}
	if msg.Err != nil {
		e.log.Warn().Err(msg.Err).Int64("user_id", msg.UserID).Msg("membership sync failed")
		return model.ErrorNotice("Could not load your wishlist and visits.")
	}
	e.Seed(msg.UserID, Wishlist, msg.Wishlist, msg.Since)
	e.Seed(msg.UserID, Visited, msg.Visited, msg.Since)
	return model.Notice{}
}
