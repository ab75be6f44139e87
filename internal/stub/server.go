// Package stub serves the DineRight HTTP contract from a local SQLite file.
// It exists for development and integration tests; it is not the production
// backend.
//
// Every failure answers {"code":"FAIL"} with HTTP 200, since clients only
// read the payload code.
package stub

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dineright/internal/db"
	"dineright/internal/model"
	"dineright/internal/remote"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const maxRequestBytes = 1 << 20

// Config tunes the stub.
type Config struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	// LoginLimit is the number of /login and /signup requests allowed per IP
	// per LoginWindow. Zero disables the limit.
	LoginLimit  int
	LoginWindow time.Duration
}

// Server handles the contract endpoints.
type Server struct {
	db       *sql.DB
	cfg      Config
	validate *validator.Validate
	log      zerolog.Logger
}

// NewServer creates a server on an opened database.
func NewServer(database *sql.DB, cfg Config, logger zerolog.Logger) *Server {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.LoginWindow == 0 {
		cfg.LoginWindow = time.Minute
	}
	return &Server{
		db:       database,
		cfg:      cfg,
		validate: validator.New(),
		log:      logger.With().Str("component", "stub").Logger(),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Group(func(r chi.Router) {
		if s.cfg.LoginLimit > 0 {
			r.Use(httprate.Limit(
				s.cfg.LoginLimit,
				s.cfg.LoginWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					s.fail(w, r, "rate limited")
				}),
			))
		}
		r.Post("/login", s.login)
		r.Post("/signup", s.signup)
	})

	r.Post("/savePrefs", s.savePrefs)

	r.Get("/getAllRestaurantsData", s.allRestaurants)
	r.Get("/getRestaurantsDataById/{id}", s.restaurantByID)

	r.Post("/addWishlist", s.addMember(db.Wishlist))
	r.Delete("/removeWishlist", s.removeMember(db.Wishlist))
	r.Post("/addVisited", s.addMember(db.Visited))
	r.Delete("/removeVisited", s.removeMember(db.Visited))
	r.Get("/getWishlistIds/{userId}", s.listMembers(db.Wishlist))
	r.Get("/getRestaurantsVisitedId/{userId}", s.listMembers(db.Visited))

	r.Post("/add", s.addReview)
	r.Get("/getReviewsWritten/{userId}", s.reviewsWritten)

	r.Get("/getRecommendations/{userId}", s.recommendations)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, "method not allowed")
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=1"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req remote.CredentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := db.GetUserByEmail(s.db, req.Email)
	if err != nil {
		s.fail(w, r, "unknown account")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.fail(w, r, "wrong password")
		return
	}

	s.ok(w, remote.Response{ID: &user.ID})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req remote.SignupRequest
	if !s.decode(w, r, &req) {
		return
	}

	in := signupInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	if err := s.validate.Struct(in); err != nil {
		s.fail(w, r, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}

	id, err := db.InsertUser(s.db, in.Name, in.Email, string(hash))
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}

	s.log.Info().Int64("user_id", id).Msg("account created")
	s.ok(w, remote.Response{ID: &id})
}

func (s *Server) savePrefs(w http.ResponseWriter, r *http.Request) {
	var req remote.PreferencesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := db.GetUser(s.db, req.UserID); err != nil {
		s.fail(w, r, err.Error())
		return
	}

	obj := req.PreferenceObject
	if strings.TrimSpace(obj.Location) == "" || (obj.RadiusKm != 5 && obj.RadiusKm != 10) {
		s.fail(w, r, "location and radius are required")
		return
	}

	q := model.PreferenceQuery{
		UserID:          req.UserID,
		Location:        obj.Location,
		RadiusKm:        obj.RadiusKm,
		PriceLevel:      obj.PriceLevel,
		Atmosphere:      obj.Atmosphere,
		Cuisines:        fromNamed(obj.Cuisines),
		RestaurantTypes: fromNamed(obj.RestaurantTypes),
		Amenities:       fromNamed(obj.Amenities),
	}
	if err := db.SavePreferences(s.db, q); err != nil {
		s.fail(w, r, err.Error())
		return
	}
	s.ok(w, remote.Response{})
}

func (s *Server) allRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := db.ListRestaurants(s.db)
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}
	s.ok(w, remote.Response{Restaurants: payloads(restaurants)})
}

func (s *Server) restaurantByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.fail(w, r, "bad id")
		return
	}

	restaurant, err := db.GetRestaurant(s.db, id)
	if errors.Is(err, model.ErrNotFound) {
		s.ok(w, remote.Response{Restaurants: payloads(nil)})
		return
	}
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}
	s.ok(w, remote.Response{Restaurants: payloads([]model.Restaurant{restaurant})})
}

func (s *Server) addMember(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.relation(w, r)
		if !ok {
			return
		}
		if err := db.AddMember(s.db, table, req.UserID, req.RestaurantID); err != nil {
			s.fail(w, r, err.Error())
			return
		}
		s.ok(w, remote.Response{})
	}
}

func (s *Server) removeMember(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.relation(w, r)
		if !ok {
			return
		}
		if err := db.RemoveMember(s.db, table, req.UserID, req.RestaurantID); err != nil {
			s.fail(w, r, err.Error())
			return
		}
		s.ok(w, remote.Response{})
	}
}

func (s *Server) listMembers(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userParam(w, r)
		if !ok {
			return
		}
		ids, err := db.ListMembers(s.db, table, userID)
		if err != nil {
			s.fail(w, r, err.Error())
			return
		}
		s.ok(w, remote.Response{IDs: &ids})
	}
}

// relation decodes and checks a membership request body.
func (s *Server) relation(w http.ResponseWriter, r *http.Request) (remote.RelationRequest, bool) {
	var req remote.RelationRequest
	if !s.decode(w, r, &req) {
		return req, false
	}
	if _, err := db.GetUser(s.db, req.UserID); err != nil {
		s.fail(w, r, err.Error())
		return req, false
	}
	exists, err := db.RestaurantExists(s.db, req.RestaurantID)
	if err != nil || !exists {
		s.fail(w, r, fmt.Sprintf("restaurant %d not found", req.RestaurantID))
		return req, false
	}
	return req, true
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) {
	var req remote.ReviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	nr := model.NewReview{
		UserID:       req.UserID,
		RestaurantID: req.RestaurantID,
		Rating:       req.UserRating,
		Comment:      strings.TrimSpace(req.Comment),
	}
	if err := s.validate.Struct(nr); err != nil {
		s.fail(w, r, err.Error())
		return
	}

	user, err := db.GetUser(s.db, nr.UserID)
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}
	if exists, err := db.RestaurantExists(s.db, nr.RestaurantID); err != nil || !exists {
		s.fail(w, r, fmt.Sprintf("restaurant %d not found", nr.RestaurantID))
		return
	}

	if _, err := db.InsertReview(s.db, nr, user.Name); err != nil {
		s.fail(w, r, err.Error())
		return
	}
	s.ok(w, remote.Response{})
}

func (s *Server) reviewsWritten(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	written, err := db.ReviewsByUser(s.db, userID)
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}

	out := make([]remote.WrittenPayload, 0, len(written))
	for _, wr := range written {
		out = append(out, remote.WrittenPayload{
			RestaurantID: wr.RestaurantID,
			Resname:      wr.RestaurantName,
			Rating:       wr.Rating,
			Comment:      wr.Comment,
		})
	}
	s.ok(w, remote.Response{Written: &out})
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userParam(w, r)
	if !ok {
		return
	}
	refs, err := db.Recommend(s.db, userID)
	if err != nil {
		s.fail(w, r, err.Error())
		return
	}

	out := make([]remote.RefPayload, 0, len(refs))
	for _, ref := range refs {
		out = append(out, remote.RefPayload{
			PlaceID:  ref.PlaceID,
			Resname:  ref.Name,
			Location: ref.Location,
			Cuisines: ref.Cuisines,
		})
	}
	s.ok(w, remote.Response{Recommended: &out})
}

func (s *Server) userParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || id <= 0 {
		s.fail(w, r, "bad user id")
		return 0, false
	}
	if _, err := db.GetUser(s.db, id); err != nil {
		s.fail(w, r, err.Error())
		return 0, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, "bad request body")
		return false
	}
	return true
}

func (s *Server) ok(w http.ResponseWriter, resp remote.Response) {
	code := remote.SuccessCode
	resp.Code = &code
	s.write(w, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, reason string) {
	s.log.Info().Str("path", r.URL.Path).Str("reason", reason).Msg("request failed")
	code := remote.FailCode
	s.write(w, remote.Response{Code: &code})
}

func (s *Server) write(w http.ResponseWriter, resp remote.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("failed to write response")
	}
}

func payloads(restaurants []model.Restaurant) *[]remote.RestaurantPayload {
	out := make([]remote.RestaurantPayload, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, remote.FromRestaurant(r))
	}
	return &out
}

func fromNamed(in []remote.NamedPayload) []model.NamedOption {
	out := make([]model.NamedOption, 0, len(in))
	for _, n := range in {
		out = append(out, model.NamedOption{Name: n.Name})
	}
	return out
}
