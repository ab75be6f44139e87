package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dineright/internal/catalog"
	"dineright/internal/model"
	"dineright/internal/preference"
	"dineright/internal/recommend"
	"dineright/internal/relation"
	"dineright/internal/review"
	"dineright/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = 7

type fakeBackend struct {
	restaurants []model.Restaurant
	recs        []model.RestaurantRef
	wishlist    []int64
	visited     []int64
	written     []model.WrittenReview

	relationErr error
	savedPrefs  *model.PreferenceQuery
	posted      []model.NewReview
	relCalls    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		restaurants: []model.Restaurant{
			{ID: 1, Name: "Trattoria Roma", Location: "Dublin 2", Cuisine: "Italian", PriceLevel: 2, AggregateRating: 4.5},
			{ID: 2, Name: "Golden Dragon", Location: "Dublin 1", Cuisine: "Chinese", PriceLevel: 1, AggregateRating: 3.9},
			{ID: 3, Name: "Spice Route", Location: "Cork", Cuisine: "Indian", PriceLevel: 2, AggregateRating: 4.1},
		},
		recs: []model.RestaurantRef{
			{PlaceID: 3, Name: "Spice Route"},
			{PlaceID: 99, Name: "Somewhere New"},
		},
	}
}

func (f *fakeBackend) Login(_ context.Context, creds model.Credentials) (int64, error) {
	if creds.Password != "secret" {
		return 0, model.ErrAuthFailure
	}
	return testUserID, nil
}

func (f *fakeBackend) Signup(_ context.Context, _ model.Signup) (int64, error) {
	return testUserID, nil
}

func (f *fakeBackend) AllRestaurants(context.Context) ([]model.Restaurant, error) {
	return f.restaurants, nil
}

func (f *fakeBackend) SavePreferences(_ context.Context, q model.PreferenceQuery) error {
	f.savedPrefs = &q
	return nil
}

func (f *fakeBackend) AddWishlist(_ context.Context, _, restaurantID int64) error {
	f.relCalls++
	if f.relationErr != nil {
		return f.relationErr
	}
	f.wishlist = append(f.wishlist, restaurantID)
	return nil
}

func (f *fakeBackend) RemoveWishlist(context.Context, int64, int64) error {
	f.relCalls++
	return f.relationErr
}

func (f *fakeBackend) AddVisited(_ context.Context, _, restaurantID int64) error {
	f.relCalls++
	if f.relationErr != nil {
		return f.relationErr
	}
	f.visited = append(f.visited, restaurantID)
	return nil
}

func (f *fakeBackend) RemoveVisited(context.Context, int64, int64) error {
	f.relCalls++
	return f.relationErr
}

func (f *fakeBackend) WishlistIDs(context.Context, int64) ([]int64, error) {
	return f.wishlist, nil
}

func (f *fakeBackend) VisitedIDs(context.Context, int64) ([]int64, error) {
	return f.visited, nil
}

func (f *fakeBackend) Recommendations(context.Context, int64) ([]model.RestaurantRef, error) {
	return f.recs, nil
}

func (f *fakeBackend) AddReview(_ context.Context, r model.NewReview) error {
	f.posted = append(f.posted, r)
	return nil
}

func (f *fakeBackend) ReviewsWritten(context.Context, int64) ([]model.WrittenReview, error) {
	return f.written, nil
}

// drain runs cmd and every command it produces, feeding the messages back
// into m. Spinner ticks are dropped so nothing sleeps.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m, cmd
}

func loggedIn(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := New(backend, Options{Logger: zerolog.Nop()})
	next, cmd := m.Update(submitAuthMsg{creds: model.Credentials{Email: "ada@example.com", Password: "secret"}})
	require.NotNil(t, cmd)
	m = drain(t, next.(Model), cmd)
	require.Equal(t, model.ScreenCatalog, m.screen)
	return m
}

func TestProtectedScreensRedirectToLogin(t *testing.T) {
	m := New(newFakeBackend(), Options{Logger: zerolog.Nop()})

	for _, s := range []model.Screen{model.ScreenCatalog, model.ScreenCorner, model.ScreenDetail, model.ScreenRecommendations} {
		m.navigate(s)
		assert.Equal(t, model.ScreenLogin, m.screen, s.String())
	}
	m.navigate(model.ScreenSignup)
	assert.Equal(t, model.ScreenSignup, m.screen)
}

func TestLoginLoadsCatalogAndRecommendations(t *testing.T) {
	backend := newFakeBackend()
	backend.wishlist = []int64{2}

	m := loggedIn(t, backend)

	assert.True(t, m.session.IsAuthenticated())
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, 3, m.restaurants.Len())
	assert.Equal(t, 1, m.corner.wishlist.Len())
	assert.True(t, m.relations.State(testUserID, 2).Wishlisted())
	assert.Equal(t, 2, m.recs.total)
	assert.Equal(t, 1, m.recs.shown)
}

func TestRecommendationsResolveAgainWhenCatalogLoads(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)
	m.catalog.Clear()

	next, _ := m.Update(recommend.LoadedMsg{UserID: testUserID, Refs: backend.recs})
	m = next.(Model)
	assert.Equal(t, 0, m.recs.shown)

	next, _ = m.Update(catalog.LoadedMsg{Seq: m.session.Seq(), Restaurants: backend.restaurants})
	m = next.(Model)
	assert.Equal(t, 1, m.recs.shown)
	assert.Equal(t, 2, m.recs.total)

	// Results for another user are ignored.
	next, _ = m.Update(recommend.LoadedMsg{UserID: testUserID + 1})
	m = next.(Model)
	assert.Equal(t, 2, m.recs.total)
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	m := New(newFakeBackend(), Options{Logger: zerolog.Nop()})
	next, cmd := m.Update(submitAuthMsg{creds: model.Credentials{Email: "ada@example.com", Password: "wrong"}})
	m = drain(t, next.(Model), cmd)

	assert.Equal(t, model.ScreenLogin, m.screen)
	snap := m.session.Snapshot()
	assert.Equal(t, session.Failed, snap.Status)
	assert.NotEmpty(t, snap.LastError)
	assert.Equal(t, 0, m.catalog.Len())
}

func TestBlankCredentialsNeverReachBackend(t *testing.T) {
	m := New(newFakeBackend(), Options{Logger: zerolog.Nop()})
	next, cmd := m.Update(submitAuthMsg{creds: model.Credentials{Email: "  ", Password: ""}})
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, session.Failed, m.session.Snapshot().Status)
}

func TestWishlistToggleIsOptimistic(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)

	selected, ok := m.restaurants.Selected()
	require.True(t, ok)

	m, _ = press(t, m, "enter")
	require.Equal(t, model.ScreenDetail, m.screen)
	require.Equal(t, selected.ID, m.detail.ID())

	m, cmd := press(t, m, "w")
	require.NotNil(t, cmd)

	st := m.relations.State(testUserID, selected.ID)
	assert.True(t, st.Wishlist.Set)
	assert.Equal(t, relation.Pending, st.Wishlist.Sync)
	assert.Equal(t, 1, m.corner.wishlist.Len())

	// A second press while the first is pending is rejected locally.
	m, second := press(t, m, "w")
	assert.Nil(t, second)
	assert.Contains(t, m.info, "Still saving")

	m = drain(t, m, cmd)
	st = m.relations.State(testUserID, selected.ID)
	assert.True(t, st.Wishlist.Set)
	assert.Equal(t, relation.Synced, st.Wishlist.Sync)
	assert.Equal(t, "Added to wishlist", m.info)
	assert.Equal(t, []int64{selected.ID}, backend.wishlist)
	assert.Equal(t, 1, backend.relCalls)
}

func TestToggleRollsBackOnFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.relationErr = errors.New("boom")
	m := loggedIn(t, backend)

	m, _ = press(t, m, "enter")
	id := m.detail.ID()

	m, cmd := press(t, m, "v")
	require.NotNil(t, cmd)
	assert.True(t, m.relations.State(testUserID, id).IsVisited())

	m = drain(t, m, cmd)
	st := m.relations.State(testUserID, id)
	assert.False(t, st.IsVisited())
	assert.False(t, st.Wishlisted())
	assert.Contains(t, m.error, "Could not add to visited")
	assert.Equal(t, 0, m.corner.visited.Len())
}

func TestPreferencesValidationAndSave(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)

	m, _ = press(t, m, "p")
	require.Equal(t, model.ScreenPreferences, m.screen)
	require.NotNil(t, m.prefsForm)
	assert.Equal(t, model.ModeInsert, m.mode)

	next, cmd := m.Update(savePrefsMsg{})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "Incomplete: location is required", m.prefsForm.error)
	assert.Nil(t, backend.savedPrefs)

	sel := preference.Selections{Location: " Dublin ", RadiusKm: 5, PriceLabel: "€10 - €20"}
	sel.Cuisines.Add("Italian")
	next, cmd = m.Update(savePrefsMsg{selections: sel})
	m = drain(t, next.(Model), cmd)

	require.NotNil(t, backend.savedPrefs)
	assert.Equal(t, "Dublin", backend.savedPrefs.Location)
	assert.Equal(t, 2, backend.savedPrefs.PriceLevel)
	assert.Equal(t, int64(testUserID), backend.savedPrefs.UserID)
	assert.Equal(t, []model.NamedOption{{Name: "Italian"}}, backend.savedPrefs.Cuisines)
	assert.Nil(t, m.prefsForm)
	assert.Equal(t, model.ScreenRecommendations, m.screen)
}

func TestSignupGoesToPreferences(t *testing.T) {
	m := New(newFakeBackend(), Options{Logger: zerolog.Nop()})
	next, cmd := m.Update(submitAuthMsg{
		signup: true,
		name:   "Ada",
		creds:  model.Credentials{Email: "ada@example.com", Password: "secret"},
	})
	m = drain(t, next.(Model), cmd)

	assert.Equal(t, model.ScreenPreferences, m.screen)
	require.NotNil(t, m.prefsForm)

	// Skipping preferences lands on the catalog.
	next, _ = m.Update(model.FormCancelledMsg{})
	m = next.(Model)
	assert.Equal(t, model.ScreenCatalog, m.screen)
	assert.Nil(t, m.prefsForm)
}

func TestReviewSubmission(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)

	m, _ = press(t, m, "enter", "r")
	require.NotNil(t, m.reviewForm)
	assert.Equal(t, model.ModeInsert, m.mode)
	id := m.detail.ID()

	next, cmd := m.Update(submitReviewMsg{restaurantID: id, rating: 4, comment: "Lovely pasta"})
	m = drain(t, next.(Model), cmd)

	require.Len(t, backend.posted, 1)
	assert.Equal(t, model.NewReview{UserID: testUserID, RestaurantID: id, Rating: 4, Comment: "Lovely pasta"}, backend.posted[0])
	assert.Nil(t, m.reviewForm)
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, "Review posted", m.info)
}

func TestLogoutClearsState(t *testing.T) {
	backend := newFakeBackend()
	backend.wishlist = []int64{1}
	m := loggedIn(t, backend)
	require.True(t, m.relations.State(testUserID, 1).Wishlisted())

	m, _ = press(t, m, "L")

	assert.Equal(t, model.ScreenLogin, m.screen)
	assert.False(t, m.session.IsAuthenticated())
	assert.False(t, m.catalog.Loaded())
	assert.False(t, m.relations.State(testUserID, 1).Wishlisted())
	assert.Equal(t, 0, m.restaurants.Len())

	// A catalog fetched before logout is dropped.
	next, _ := m.Update(catalog.LoadedMsg{Restaurants: backend.restaurants})
	m = next.(Model)
	assert.False(t, m.catalog.Loaded())
}

func TestCatalogFromPastSessionIsDropped(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)
	past := m.session.Seq()

	m, _ = press(t, m, "L")
	next, cmd := m.Update(submitAuthMsg{creds: model.Credentials{Email: "ada@example.com", Password: "secret"}})
	m = drain(t, next.(Model), cmd)
	require.True(t, m.session.IsAuthenticated())

	// The new session's own fetch is still outstanding.
	m.catalog.Clear()
	m.catalogLoading = true

	next, _ = m.Update(catalog.LoadedMsg{Seq: past, Restaurants: backend.restaurants})
	m = next.(Model)
	assert.True(t, m.catalogLoading)
	assert.False(t, m.catalog.Loaded())

	next, _ = m.Update(catalog.LoadedMsg{Seq: m.session.Seq(), Restaurants: backend.restaurants})
	m = next.(Model)
	assert.False(t, m.catalogLoading)
	assert.True(t, m.catalog.Loaded())
}

func TestReviewResultAfterLogoutIsIgnored(t *testing.T) {
	m := loggedIn(t, newFakeBackend())
	m, _ = press(t, m, "L")

	next, cmd := m.Update(review.SubmittedMsg{UserID: testUserID, RestaurantID: 1})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.catalogLoading)
	assert.Equal(t, "Logged out", m.info)
}

func TestLateSyncDoesNotUndoConfirmedToggle(t *testing.T) {
	backend := newFakeBackend()
	m := loggedIn(t, backend)

	// ctrl+r refresh issued before the toggle, answered after it.
	stale := m.relations.SyncCmd(backend, testUserID)()

	m, _ = press(t, m, "enter")
	id := m.detail.ID()
	m, cmd := press(t, m, "w")
	m = drain(t, m, cmd)
	require.True(t, m.relations.State(testUserID, id).Wishlisted())

	next, _ := m.Update(stale)
	m = next.(Model)
	assert.True(t, m.relations.State(testUserID, id).Wishlisted())
	assert.Equal(t, 1, m.corner.wishlist.Len())
}

func TestTabNavigation(t *testing.T) {
	m := loggedIn(t, newFakeBackend())

	m, _ = press(t, m, "3")
	assert.Equal(t, model.ScreenCorner, m.screen)

	m, cmd := press(t, m, "2")
	assert.Equal(t, model.ScreenRecommendations, m.screen)
	assert.Nil(t, cmd, "recommendations already loaded")

	m, _ = press(t, m, "1")
	assert.Equal(t, model.ScreenCatalog, m.screen)
}

func TestViewRendersChrome(t *testing.T) {
	m := loggedIn(t, newFakeBackend())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "dineright")
	assert.Contains(t, view, "Trattoria Roma")
	assert.Contains(t, view, "For You")
	assert.True(t, strings.Contains(view, "Restaurants"))
}
