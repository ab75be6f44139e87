package session

import (
	"context"
	"testing"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	accounts map[string]string
	ids      map[string]int64
	err      error
	calls    int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		accounts: map[string]string{"ana@example.com": "secret"},
		ids:      map[string]int64{"ana@example.com": 7},
	}
}

func (f *fakeAuth) Login(_ context.Context, creds model.Credentials) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if pw, ok := f.accounts[creds.Email]; ok && pw == creds.Password {
		return f.ids[creds.Email], nil
	}
	return 0, model.ErrAuthFailure
}

func (f *fakeAuth) Signup(_ context.Context, s model.Signup) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.accounts[s.Email]; ok {
		return 0, model.ErrRemoteFailure
	}
	f.accounts[s.Email] = s.Password
	f.ids[s.Email] = int64(100 + len(f.ids))
	return f.ids[s.Email], nil
}

func run(t *testing.T, cmd tea.Cmd) ResultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ResultMsg)
	require.True(t, ok)
	return msg
}

func TestLoginSuccess(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())

	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, Authenticating, s.Snapshot().Status)
	assert.False(t, s.IsAuthenticated())

	notice := s.Resolve(run(t, cmd))
	assert.Equal(t, model.NoticeInfo, notice.Level)
	assert.True(t, s.IsAuthenticated())

	id, ok := s.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestLoginInvalidCredentialsNeverAuthenticates(t *testing.T) {
	creds := []model.Credentials{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "bob@example.com", Password: "secret"},
		{Email: "ANA@example.com", Password: "secret"},
		{Email: "", Password: "secret"},
		{Email: "ana@example.com", Password: ""},
		{Email: "   ", Password: "   "},
	}
	for _, c := range creds {
		s := NewStore(newFakeAuth(), zerolog.Nop())
		cmd, err := s.BeginLogin(c)
		require.NoError(t, err)
		if cmd != nil {
			s.Resolve(run(t, cmd))
		}

		snap := s.Snapshot()
		assert.Equal(t, Failed, snap.Status, c.Email)
		assert.Equal(t, ReasonInvalidCredentials, snap.LastError, c.Email)
		assert.Zero(t, snap.UserID)
		assert.False(t, s.IsAuthenticated())
	}
}

func TestBlankCredentialsSkipNetwork(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, zerolog.Nop())

	cmd, err := s.BeginLogin(model.Credentials{Email: " ", Password: "x"})
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Zero(t, auth.calls)
	assert.Equal(t, Failed, s.Snapshot().Status)
}

func TestTransportFailureReason(t *testing.T) {
	auth := newFakeAuth()
	auth.err = model.ErrRemoteFailure
	s := NewStore(auth, zerolog.Nop())

	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	notice := s.Resolve(run(t, cmd))

	assert.Equal(t, model.NoticeError, notice.Level)
	assert.Equal(t, ReasonUnavailable, s.Snapshot().LastError)
	assert.Equal(t, Failed, s.Snapshot().Status)
}

func TestFailedIsReenterable(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())

	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "wrong"})
	require.NoError(t, err)
	s.Resolve(run(t, cmd))
	require.Equal(t, Failed, s.Snapshot().Status)

	cmd, err = s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, Authenticating, s.Snapshot().Status)
	s.Resolve(run(t, cmd))
	assert.True(t, s.IsAuthenticated())
}

func TestBeginLoginWhileAuthenticating(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())

	_, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrOperationInFlight)
	assert.Nil(t, cmd)
	assert.Equal(t, Authenticating, s.Snapshot().Status)
}

func TestLogoutDiscardsLateResult(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())

	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	s.Logout()

	notice := s.Resolve(run(t, cmd))
	assert.True(t, notice.Empty())
	assert.Equal(t, Unauthenticated, s.Snapshot().Status)
	assert.False(t, s.IsAuthenticated())
}

func TestLogoutIdempotentAndGates(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())
	cmd, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	s.Resolve(run(t, cmd))
	require.Equal(t, model.ScreenCatalog, s.Gate(model.ScreenCatalog))

	s.Logout()
	s.Logout()

	assert.Equal(t, Session{}, s.Snapshot())
	_, ok := s.UserID()
	assert.False(t, ok)

	protected := []model.Screen{
		model.ScreenPreferences, model.ScreenCatalog, model.ScreenDetail,
		model.ScreenCorner, model.ScreenRecommendations,
	}
	for _, screen := range protected {
		assert.Equal(t, model.ScreenLogin, s.Gate(screen), screen.String())
	}
	assert.Equal(t, model.ScreenSignup, s.Gate(model.ScreenSignup))
}

func TestGateDuringAuthenticating(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())
	_, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, model.ScreenLogin, s.Gate(model.ScreenRecommendations))
}

func TestSignup(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())

	cmd, err := s.BeginSignup(model.Signup{Name: "Bo", Email: "bo@example.com", Password: "pw"})
	require.NoError(t, err)
	s.Resolve(run(t, cmd))

	id, ok := s.UserID()
	require.True(t, ok)
	assert.Positive(t, id)

	s.Logout()
	cmd, err = s.BeginSignup(model.Signup{Name: "Bo", Email: "bo@example.com", Password: "pw"})
	require.NoError(t, err)
	s.Resolve(run(t, cmd))
	assert.Equal(t, Failed, s.Snapshot().Status)
}

func TestResolveWithoutUserIDFails(t *testing.T) {
	s := NewStore(newFakeAuth(), zerolog.Nop())
	_, err := s.BeginLogin(model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	s.Resolve(ResultMsg{Seq: 1})
	assert.Equal(t, Failed, s.Snapshot().Status)
	assert.Equal(t, ReasonUnavailable, s.Snapshot().LastError)
}
