package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dineright/internal/model"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	// DefaultTimeout bounds every request; the core treats a timeout like any
	// other failure.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
)

// CodeError is a response whose code is not the success token.
type CodeError struct {
	Method string
	Path   string
	Code   string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s %s answered code %q", e.Method, e.Path, e.Code)
}

// Unwrap makes every CodeError an ErrRemoteFailure.
func (e *CodeError) Unwrap() error {
	return model.ErrRemoteFailure
}

// Client wraps the DineRight HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        zerolog.Logger
}

// NewClient creates a new service client.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := logger.With().Str("component", "remote").Logger()

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "dineright-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    cb,
		log:        log,
	}
}

// Login exchanges credentials for a user id.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "/login", CredentialsRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		var codeErr *CodeError
		if errors.As(err, &codeErr) {
			return 0, model.ErrAuthFailure
		}
		return 0, err
	}
	return userID(resp, "/login")
}

// Signup creates an account and returns its user id.
func (c *Client) Signup(ctx context.Context, s model.Signup) (int64, error) {
	resp, err := c.do(ctx, http.MethodPost, "/signup", SignupRequest{Name: s.Name, Email: s.Email, Password: s.Password})
	if err != nil {
		return 0, err
	}
	return userID(resp, "/signup")
}

// SavePreferences stores a compiled preference query for its user.
func (c *Client) SavePreferences(ctx context.Context, q model.PreferenceQuery) error {
	_, err := c.do(ctx, http.MethodPost, "/savePrefs", FromPreferenceQuery(q))
	return err
}

// AllRestaurants fetches the full catalog.
func (c *Client) AllRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	resp, err := c.do(ctx, http.MethodGet, "/getAllRestaurantsData", nil)
	if err != nil {
		return nil, err
	}
	if resp.Restaurants == nil {
		return nil, fmt.Errorf("%w: /getAllRestaurantsData without restaurants", model.ErrMalformedResponse)
	}

	restaurants := make([]model.Restaurant, 0, len(*resp.Restaurants))
	for _, p := range *resp.Restaurants {
		restaurants = append(restaurants, p.ToRestaurant())
	}
	return restaurants, nil
}

// RestaurantByID fetches a single restaurant.
func (c *Client) RestaurantByID(ctx context.Context, id int64) (model.Restaurant, error) {
	path := fmt.Sprintf("/getRestaurantsDataById/%d", id)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return model.Restaurant{}, err
	}
	if resp.Restaurants == nil {
		return model.Restaurant{}, fmt.Errorf("%w: %s without restaurants", model.ErrMalformedResponse, path)
	}
	if len(*resp.Restaurants) == 0 {
		return model.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, model.ErrNotFound)
	}
	return (*resp.Restaurants)[0].ToRestaurant(), nil
}

// AddWishlist adds a restaurant to the user's wishlist.
func (c *Client) AddWishlist(ctx context.Context, userID, restaurantID int64) error {
	return c.relation(ctx, http.MethodPost, "/addWishlist", userID, restaurantID)
}

// RemoveWishlist removes a restaurant from the user's wishlist.
func (c *Client) RemoveWishlist(ctx context.Context, userID, restaurantID int64) error {
	return c.relation(ctx, http.MethodDelete, "/removeWishlist", userID, restaurantID)
}

// AddVisited marks a restaurant as visited.
func (c *Client) AddVisited(ctx context.Context, userID, restaurantID int64) error {
	return c.relation(ctx, http.MethodPost, "/addVisited", userID, restaurantID)
}

// RemoveVisited clears the visited mark.
func (c *Client) RemoveVisited(ctx context.Context, userID, restaurantID int64) error {
	return c.relation(ctx, http.MethodDelete, "/removeVisited", userID, restaurantID)
}

// AddReview submits a review.
func (c *Client) AddReview(ctx context.Context, r model.NewReview) error {
	_, err := c.do(ctx, http.MethodPost, "/add", ReviewRequest{
		UserID:       r.UserID,
		RestaurantID: r.RestaurantID,
		UserRating:   r.Rating,
		Comment:      r.Comment,
	})
	return err
}

// Recommendations fetches the ranked recommendation list for a user.
func (c *Client) Recommendations(ctx context.Context, userID int64) ([]model.RestaurantRef, error) {
	path := fmt.Sprintf("/getRecommendations/%d", userID)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.Recommended == nil {
		return nil, fmt.Errorf("%w: %s without recommendedRestaurants", model.ErrMalformedResponse, path)
	}

	refs := make([]model.RestaurantRef, 0, len(*resp.Recommended))
	for _, p := range *resp.Recommended {
		refs = append(refs, p.ToRef())
	}
	return refs, nil
}

// WishlistIDs lists the restaurants on a user's wishlist.
func (c *Client) WishlistIDs(ctx context.Context, userID int64) ([]int64, error) {
	return c.ids(ctx, fmt.Sprintf("/getWishlistIds/%d", userID))
}

// VisitedIDs lists the restaurants a user has visited.
func (c *Client) VisitedIDs(ctx context.Context, userID int64) ([]int64, error) {
	return c.ids(ctx, fmt.Sprintf("/getRestaurantsVisitedId/%d", userID))
}

// ReviewsWritten lists the reviews a user has submitted, newest first.
func (c *Client) ReviewsWritten(ctx context.Context, userID int64) ([]model.WrittenReview, error) {
	path := fmt.Sprintf("/getReviewsWritten/%d", userID)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.Written == nil {
		return nil, fmt.Errorf("%w: %s without reviews", model.ErrMalformedResponse, path)
	}

	out := make([]model.WrittenReview, 0, len(*resp.Written))
	for _, p := range *resp.Written {
		out = append(out, model.WrittenReview{
			RestaurantID:   p.RestaurantID,
			RestaurantName: p.Resname,
			Rating:         p.Rating,
			Comment:        p.Comment,
		})
	}
	return out, nil
}

func (c *Client) ids(ctx context.Context, path string) ([]int64, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.IDs == nil {
		return nil, fmt.Errorf("%w: %s without restaurantIds", model.ErrMalformedResponse, path)
	}
	return append([]int64{}, *resp.IDs...), nil
}

func (c *Client) relation(ctx context.Context, method, path string, userID, restaurantID int64) error {
	_, err := c.do(ctx, method, path, RelationRequest{UserID: userID, RestaurantID: restaurantID})
	return err
}

// do sends one request and validates the envelope. Transport errors and
// non-success codes are ErrRemoteFailure; undecodable bodies are
// ErrMalformedResponse. HTTP status codes are not consulted.
func (c *Client) do(ctx context.Context, method, path string, body any) (Response, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("failed to encode %s body: %w", path, err)
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("request creation failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("network error: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return data, nil
	})

	log := c.log.With().Str("method", method).Str("path", path).Str("request_id", requestID).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return Response{}, fmt.Errorf("%w: %s %s: %v", model.ErrRemoteFailure, method, path, err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Msg("undecodable response")
		return Response{}, fmt.Errorf("%w: %s %s: %v", model.ErrMalformedResponse, method, path, err)
	}

	code := ""
	if out.Code != nil {
		code = *out.Code
	}
	if !IsSuccess(code) {
		log.Info().Str("code", code).Str("message", out.Message).Msg("non-success code")
		return out, &CodeError{Method: method, Path: path, Code: code}
	}

	log.Debug().Msg("request ok")
	return out, nil
}

func userID(resp Response, path string) (int64, error) {
	if resp.ID == nil || *resp.ID <= 0 {
		return 0, fmt.Errorf("%w: %s without id", model.ErrMalformedResponse, path)
	}
	return *resp.ID, nil
}
