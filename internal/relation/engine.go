// Package relation tracks a user's wishlist and visited membership per
// restaurant, applying toggles optimistically and reconciling them with the
// remote service.
//
// A toggle runs in three phases. Toggle flips the flag locally, marks it
// pending and returns the command that performs the remote call. The command
// result is fed back through Resolve, which either confirms the flag or rolls
// it back. While a flag is pending, further toggles of that flag are rejected
// with model.ErrOperationInFlight; the other flag kind of the same pair, and
// every other pair, stay independent.
package relation

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// Kind is a relationship flag kind.
type Kind int

const (
	Wishlist Kind = iota
	Visited
)

func (k Kind) String() string {
	if k == Visited {
		return "visited"
	}
	return "wishlist"
}

// Op is the remote operation a pending flag is waiting on.
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "none"
	}
}

// SyncStatus says whether a flag agrees with the remote service.
type SyncStatus int

const (
	Synced SyncStatus = iota
	Pending
	Failed
)

func (s SyncStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "synced"
	}
}

// Flag is one membership fact and its sync state.
type Flag struct {
	Set       bool
	PendingOp Op
	Sync      SyncStatus
}

// State is the relationship of one user to one restaurant. The zero value is
// the default: no membership, nothing pending, synced.
type State struct {
	Wishlist Flag
	Visited  Flag
}

// Wishlisted reports wishlist membership, including an unconfirmed toggle.
func (s State) Wishlisted() bool { return s.Wishlist.Set }

// IsVisited reports visited membership, including an unconfirmed toggle.
func (s State) IsVisited() bool { return s.Visited.Set }

// Flag returns the flag of kind.
func (s State) Flag(kind Kind) Flag {
	if kind == Visited {
		return s.Visited
	}
	return s.Wishlist
}

func (s *State) flag(kind Kind) *Flag {
	if kind == Visited {
		return &s.Visited
	}
	return &s.Wishlist
}

// Key identifies a (user, restaurant) pair.
type Key struct {
	UserID       int64
	RestaurantID int64
}

// Remote performs the membership calls.
type Remote interface {
	AddWishlist(ctx context.Context, userID, restaurantID int64) error
	RemoveWishlist(ctx context.Context, userID, restaurantID int64) error
	AddVisited(ctx context.Context, userID, restaurantID int64) error
	RemoveVisited(ctx context.Context, userID, restaurantID int64) error
}

// Identity supplies the signed-in user. *session.Store satisfies it.
type Identity interface {
	UserID() (int64, bool)
}

// ResultMsg is the terminal response of a toggle's remote call.
type ResultMsg struct {
	Key   Key
	Kind  Kind
	Op    Op
	Token uint64
	Err   error
}

type flagKey struct {
	Key
	Kind Kind
}

// Engine owns every RelationshipState of the process.
type Engine struct {
	mu       sync.Mutex
	remote   Remote
	identity Identity
	states   map[Key]State
	inflight map[flagKey]uint64
	settled  map[flagKey]uint64
	next     uint64
	log      zerolog.Logger
}

// NewEngine creates an engine that checks callers against identity.
func NewEngine(remote Remote, identity Identity, logger zerolog.Logger) *Engine {
	return &Engine{
		remote:   remote,
		identity: identity,
		states:   make(map[Key]State),
		inflight: make(map[flagKey]uint64),
		settled:  make(map[flagKey]uint64),
		log:      logger.With().Str("component", "relation").Logger(),
	}
}

// ToggleWishlist flips wishlist membership and returns the remote command.
func (e *Engine) ToggleWishlist(userID, restaurantID int64) (tea.Cmd, error) {
	return e.toggle(Key{UserID: userID, RestaurantID: restaurantID}, Wishlist)
}

// ToggleVisited flips visited membership and returns the remote command.
func (e *Engine) ToggleVisited(userID, restaurantID int64) (tea.Cmd, error) {
	return e.toggle(Key{UserID: userID, RestaurantID: restaurantID}, Visited)
}

func (e *Engine) toggle(key Key, kind Kind) (tea.Cmd, error) {
	if id, ok := e.identity.UserID(); !ok || id != key.UserID {
		return nil, fmt.Errorf("toggle %s for user %d: %w", kind, key.UserID, model.ErrUnauthenticated)
	}

	e.mu.Lock()
	st := e.states[key]
	f := st.flag(kind)
	if f.PendingOp != OpNone {
		e.mu.Unlock()
		return nil, fmt.Errorf("toggle %s of restaurant %d: %w", kind, key.RestaurantID, model.ErrOperationInFlight)
	}

	op := OpAdd
	if f.Set {
		op = OpRemove
	}
	f.Set = !f.Set
	f.PendingOp = op
	f.Sync = Pending
	e.states[key] = st

	e.next++
	token := e.next
	e.inflight[flagKey{key, kind}] = token
	e.mu.Unlock()

	e.log.Debug().
		Int64("user_id", key.UserID).
		Int64("restaurant_id", key.RestaurantID).
		Stringer("kind", kind).
		Stringer("op", op).
		Msg("optimistic toggle")

	call := e.call(kind, op)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := call(ctx, key.UserID, key.RestaurantID)
		return ResultMsg{Key: key, Kind: kind, Op: op, Token: token, Err: err}
	}, nil
}

func (e *Engine) call(kind Kind, op Op) func(context.Context, int64, int64) error {
	switch {
	case kind == Wishlist && op == OpAdd:
		return e.remote.AddWishlist
	case kind == Wishlist:
		return e.remote.RemoveWishlist
	case op == OpAdd:
		return e.remote.AddVisited
	default:
		return e.remote.RemoveVisited
	}
}

// Resolve confirms or rolls back the toggle msg answers and returns the
// notice to show. Results for toggles the engine no longer tracks (after
// Forget) are dropped with an empty notice.
func (e *Engine) Resolve(msg ResultMsg) model.Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	fk := flagKey{msg.Key, msg.Kind}
	if token, ok := e.inflight[fk]; !ok || token != msg.Token {
		e.log.Debug().Int64("restaurant_id", msg.Key.RestaurantID).Msg("dropping stale toggle result")
		return model.Notice{}
	}
	delete(e.inflight, fk)
	e.next++
	e.settled[fk] = e.next

	st := e.states[msg.Key]
	f := st.flag(msg.Kind)
	f.PendingOp = OpNone

	log := e.log.With().
		Int64("user_id", msg.Key.UserID).
		Int64("restaurant_id", msg.Key.RestaurantID).
		Stringer("kind", msg.Kind).
		Stringer("op", msg.Op).
		Logger()

	if msg.Err != nil {
		f.Set = msg.Op == OpRemove
		f.Sync = Failed
		e.states[msg.Key] = st
		log.Warn().Err(msg.Err).Msg("toggle rolled back")
		return model.ErrorNotice(failureText(msg.Kind, msg.Op))
	}

	f.Sync = Synced
	e.states[msg.Key] = st
	log.Info().Msg("toggle confirmed")
	return model.InfoNotice(successText(msg.Kind, msg.Op))
}

// State returns the relationship for a pair, or the default if none exists.
func (e *Engine) State(userID, restaurantID int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[Key{UserID: userID, RestaurantID: restaurantID}]
}

// Members returns the restaurant ids whose kind flag is set for userID,
// ascending. Unconfirmed toggles count.
func (e *Engine) Members(userID int64, kind Kind) []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []int64
	for key, st := range e.states {
		if key.UserID == userID && st.Flag(kind).Set {
			ids = append(ids, key.RestaurantID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Generation returns the engine's toggle counter. A membership fetch started
// at generation g cannot know about toggles settled after g.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next
}

// Seed records confirmed membership fetched from the service: every id in
// restaurantIDs is set and every other known pair of that kind is cleared.
// since is the Generation at which the fetch started. Flags with a pending
// toggle, or one settled after since, are left alone.
func (e *Engine) Seed(userID int64, kind Kind, restaurantIDs []int64, since uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	member := make(map[int64]bool, len(restaurantIDs))
	for _, id := range restaurantIDs {
		member[id] = true
	}

	for key, st := range e.states {
		if key.UserID != userID || member[key.RestaurantID] {
			continue
		}
		f := st.flag(kind)
		if f.PendingOp != OpNone || e.settled[flagKey{key, kind}] > since {
			continue
		}
		*f = Flag{}
		e.states[key] = st
	}

	for id := range member {
		key := Key{UserID: userID, RestaurantID: id}
		st := e.states[key]
		f := st.flag(kind)
		if f.PendingOp != OpNone || e.settled[flagKey{key, kind}] > since {
			continue
		}
		*f = Flag{Set: true, Sync: Synced}
		e.states[key] = st
	}
}

// Forget drops every pair of userID, pending ones included. Their late
// results are then ignored by Resolve.
func (e *Engine) Forget(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.states {
		if key.UserID == userID {
			delete(e.states, key)
		}
	}
	for fk := range e.inflight {
		if fk.UserID == userID {
			delete(e.inflight, fk)
		}
	}
	for fk := range e.settled {
		if fk.UserID == userID {
			delete(e.settled, fk)
		}
	}
}

func successText(kind Kind, op Op) string {
	switch {
	case kind == Wishlist && op == OpAdd:
		return "Added to wishlist"
	case kind == Wishlist:
		return "Removed from wishlist"
	case op == OpAdd:
		return "Marked as visited"
	default:
		return "Removed from visited"
	}
}

func failureText(kind Kind, op Op) string {
	if op == OpAdd {
		return fmt.Sprintf("Could not add to %s. Try again.", kind)
	}
	return fmt.Sprintf("Could not remove from %s. Try again.", kind)
}
