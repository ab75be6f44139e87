package stub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dineright/internal/db"
	"dineright/internal/model"
	"dineright/internal/remote"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T, cfg Config) (*remote.Client, *httptest.Server) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Seed(database, db.SampleRestaurants))

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.MinCost
	}
	srv := httptest.NewServer(NewServer(database, cfg, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)

	return remote.NewClient(srv.URL, 5*time.Second, zerolog.Nop()), srv
}

func TestSignupAndLogin(t *testing.T) {
	client, _ := newTestServer(t, Config{})
	ctx := context.Background()

	id, err := client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := client.Login(ctx, model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = client.Login(ctx, model.Credentials{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrAuthFailure)

	_, err = client.Login(ctx, model.Credentials{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrAuthFailure)

	_, err = client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "again"})
	assert.ErrorIs(t, err, model.ErrRemoteFailure, "duplicate email")

	_, err = client.Signup(ctx, model.Signup{Name: "Bo", Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, model.ErrRemoteFailure)
}

func TestCatalog(t *testing.T) {
	client, _ := newTestServer(t, Config{})
	ctx := context.Background()

	all, err := client.AllRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Blue Ocean Seafood", all[0].Name)
	assert.Equal(t, 3, all[0].PriceLevel)
	assert.InDelta(t, 4.5, all[0].AggregateRating, 0.001)
	assert.Len(t, all[1].Reviews, 3)

	r, err := client.RestaurantByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo Sushi House", r.Name)

	_, err = client.RestaurantByID(ctx, 42)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMembershipRoundTrip(t *testing.T) {
	client, _ := newTestServer(t, Config{})
	ctx := context.Background()

	user, err := client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, client.AddWishlist(ctx, user, 2))
	require.NoError(t, client.AddWishlist(ctx, user, 3))
	require.NoError(t, client.AddVisited(ctx, user, 1))

	wish, err := client.WishlistIDs(ctx, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, wish)

	require.NoError(t, client.RemoveWishlist(ctx, user, 3))
	wish, err = client.WishlistIDs(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, wish)

	require.NoError(t, client.RemoveVisited(ctx, user, 1))
	visited, err := client.VisitedIDs(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, visited)

	assert.ErrorIs(t, client.AddWishlist(ctx, user, 99), model.ErrRemoteFailure, "unknown restaurant")
	assert.ErrorIs(t, client.AddVisited(ctx, user+100, 1), model.ErrRemoteFailure, "unknown user")
}

func TestReviewsAndRecommendations(t *testing.T) {
	client, _ := newTestServer(t, Config{})
	ctx := context.Background()

	user, err := client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, client.AddReview(ctx, model.NewReview{UserID: user, RestaurantID: 2, Rating: 5, Comment: "  Lovely  "}))
	assert.ErrorIs(t, client.AddReview(ctx, model.NewReview{UserID: user, RestaurantID: 2, Rating: 0}), model.ErrRemoteFailure)

	written, err := client.ReviewsWritten(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []model.WrittenReview{{RestaurantID: 2, RestaurantName: "Spice Route", Rating: 5, Comment: "Lovely"}}, written)

	r, err := client.RestaurantByID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, r.Reviews, 4)
	assert.Equal(t, "Ana", r.Reviews[3].AuthorLabel)

	require.NoError(t, client.SavePreferences(ctx, model.PreferenceQuery{
		UserID:   user,
		Location: "Miami",
		RadiusKm: 5,
		Cuisines: []model.NamedOption{{Name: "Seafood"}},
	}))

	refs, err := client.Recommendations(ctx, user)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, model.RestaurantRef{PlaceID: 1, Name: "Blue Ocean Seafood", Location: "Miami", Cuisines: "Seafood"}, refs[0])
}

func TestSavePreferencesRejectsBadRadius(t *testing.T) {
	client, _ := newTestServer(t, Config{})
	ctx := context.Background()

	user, err := client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	err = client.SavePreferences(ctx, model.PreferenceQuery{UserID: user, Location: "Miami", RadiusKm: 7})
	assert.ErrorIs(t, err, model.ErrRemoteFailure)
}

func TestFailuresAnswerFailCode(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"unknown path", http.MethodGet, "/nope", ""},
		{"wrong method", http.MethodGet, "/login", ""},
		{"bad body", http.MethodPost, "/login", "{"},
		{"bad id", http.MethodGet, "/getRestaurantsDataById/abc", ""},
		{"bad user", http.MethodGet, "/getRecommendations/0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, decodeBody(resp, &body))
			assert.Equal(t, remote.FailCode, body.Code)
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	client, _ := newTestServer(t, Config{LoginLimit: 2, LoginWindow: time.Minute})
	ctx := context.Background()

	_, err := client.Signup(ctx, model.Signup{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = client.Login(ctx, model.Credentials{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = client.Login(ctx, model.Credentials{Email: "ana@example.com", Password: "secret"})
	assert.ErrorIs(t, err, model.ErrAuthFailure, "limited requests answer FAIL")
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
