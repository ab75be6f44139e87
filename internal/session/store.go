// Package session owns the authentication state of the client and the gating
// decision for protected screens.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// Failure reasons shown to the user.
const (
	ReasonInvalidCredentials = "invalid credentials"
	ReasonUnavailable        = "service unavailable"
)

// Status is the authentication state.
type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
	Failed
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the store.
type Session struct {
	Status    Status
	UserID    int64 // 0 unless Authenticated
	LastError string
}

// Authenticator performs the remote login and signup calls.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (int64, error)
	Signup(ctx context.Context, s model.Signup) (int64, error)
}

// ResultMsg is delivered to the event loop when a login or signup finishes.
type ResultMsg struct {
	Seq    uint64
	UserID int64
	Err    error
}

// Store holds the one Session of the process.
type Store struct {
	mu      sync.Mutex
	auth    Authenticator
	session Session
	seq     uint64
	log     zerolog.Logger
}

// NewStore creates an unauthenticated store.
func NewStore(auth Authenticator, logger zerolog.Logger) *Store {
	return &Store{
		auth: auth,
		log:  logger.With().Str("component", "session").Logger(),
	}
}

// BeginLogin moves the store to Authenticating and returns the command that
// performs the remote login. Blank credentials fail at once without a command.
func (s *Store) BeginLogin(creds model.Credentials) (tea.Cmd, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	blank := creds.Email == "" || creds.Password == ""

	seq, err := s.begin(blank)
	if err != nil || blank {
		return nil, err
	}

	auth := s.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		id, err := auth.Login(ctx, creds)
		return ResultMsg{Seq: seq, UserID: id, Err: err}
	}, nil
}

// BeginSignup creates an account and authenticates it on success.
func (s *Store) BeginSignup(signup model.Signup) (tea.Cmd, error) {
	signup.Name = strings.TrimSpace(signup.Name)
	signup.Email = strings.TrimSpace(signup.Email)
	blank := signup.Name == "" || signup.Email == "" || signup.Password == ""

	seq, err := s.begin(blank)
	if err != nil || blank {
		return nil, err
	}

	auth := s.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		id, err := auth.Signup(ctx, signup)
		return ResultMsg{Seq: seq, UserID: id, Err: err}
	}, nil
}

func (s *Store) begin(blank bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Status == Authenticating {
		return 0, model.ErrOperationInFlight
	}

	s.seq++
	if blank {
		s.session = Session{Status: Failed, LastError: ReasonInvalidCredentials}
		s.log.Debug().Msg("blank credentials rejected")
		return s.seq, nil
	}

	s.session = Session{Status: Authenticating}
	return s.seq, nil
}

// Resolve applies a login or signup result. Results from a login that has
// since been superseded or logged out are ignored. The returned notice is
// empty when nothing changed.
func (s *Store) Resolve(msg ResultMsg) model.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Seq != s.seq || s.session.Status != Authenticating {
		s.log.Debug().Uint64("seq", msg.Seq).Msg("discarding stale auth result")
		return model.Notice{}
	}

	if msg.Err == nil && msg.UserID <= 0 {
		msg.Err = fmt.Errorf("%w: no user id", model.ErrMalformedResponse)
	}

	if msg.Err != nil {
		reason := ReasonUnavailable
		if errors.Is(msg.Err, model.ErrAuthFailure) {
			reason = ReasonInvalidCredentials
		}
		s.session = Session{Status: Failed, LastError: reason}
		s.log.Info().Err(msg.Err).Msg("authentication failed")
		return model.ErrorNotice(reason)
	}

	s.session = Session{Status: Authenticated, UserID: msg.UserID}
	s.log.Info().Int64("user_id", msg.UserID).Msg("authenticated")
	return model.InfoNotice("Signed in")
}

// Logout resets to Unauthenticated and invalidates any login in flight.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if s.session.Status != Unauthenticated {
		s.log.Info().Int64("user_id", s.session.UserID).Msg("logged out")
	}
	s.session = Session{}
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Status == Authenticated
}

// UserID returns the signed-in user.
func (s *Store) UserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Status != Authenticated {
		return 0, false
	}
	return s.session.UserID, true
}

// Seq identifies the current sign-in. It changes when a login starts and on
// logout, so results stamped with an older Seq belong to a past session.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Snapshot returns a copy of the session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Gate returns the screen to render for a requested one: protected screens
// redirect to login unless authenticated.
func (s *Store) Gate(screen model.Screen) model.Screen {
	if screen.Protected() && !s.IsAuthenticated() {
		return model.ScreenLogin
	}
	return screen
}
