// Package catalog holds the fetched restaurant collection and answers search
// and filter queries against it.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dineright/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
)

const fetchTimeout = 10 * time.Second

// Index is an in-memory restaurant collection keyed by id.
// Load swaps the whole collection under the lock, so readers see either the
// old or the new one.
type Index struct {
	mu          sync.RWMutex
	restaurants []model.Restaurant
	byID        map[int64]int
	loaded      bool
	validate    *validator.Validate
}

// New creates an empty index.
func New() *Index {
	return &Index{
		byID:     make(map[int64]int),
		validate: validator.New(),
	}
}

// Load validates every entry and replaces the collection. A single malformed
// entry or duplicate id rejects the batch and leaves the index unchanged.
func (ix *Index) Load(restaurants []model.Restaurant) error {
	next := make([]model.Restaurant, 0, len(restaurants))
	byID := make(map[int64]int, len(restaurants))

	for i, r := range restaurants {
		if err := ix.validate.Struct(r); err != nil {
			return fmt.Errorf("%w: entry %d: %v", model.ErrInvalidCatalog, i, err)
		}
		if _, dup := byID[r.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", model.ErrInvalidCatalog, r.ID)
		}
		byID[r.ID] = len(next)
		next = append(next, clone(r))
	}

	ix.mu.Lock()
	ix.restaurants = next
	ix.byID = byID
	ix.loaded = true
	ix.mu.Unlock()
	return nil
}

// Clear empties the index. Loaded reports false afterwards.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.restaurants = nil
	ix.byID = make(map[int64]int)
	ix.loaded = false
	ix.mu.Unlock()
}

// Loaded reports whether a collection has been loaded since the last Clear.
func (ix *Index) Loaded() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.loaded
}

// Len returns the number of restaurants.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.restaurants)
}

// Search returns restaurants whose name, location or cuisine contains term,
// case-insensitively, in load order. A blank term matches everything.
func (ix *Index) Search(term string) []model.Restaurant {
	return ix.Query(Filter{Term: term})
}

// Filter narrows a search. Zero fields do not filter.
type Filter struct {
	Term          string
	Cuisine       string   // exact, case-insensitive
	MaxPriceLevel int      // 1-4; entries with unknown price pass
	MinRating     float64  // 0-5
	Amenities     []string // all required, case-insensitive
}

// Query applies every set field of f, ANDed.
func (ix *Index) Query(f Filter) []model.Restaurant {
	term := strings.ToLower(f.Term)
	if strings.TrimSpace(term) == "" {
		term = ""
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]model.Restaurant, 0, len(ix.restaurants))
	for _, r := range ix.restaurants {
		if term != "" && !matchesTerm(r, term) {
			continue
		}
		if f.Cuisine != "" && !strings.EqualFold(r.Cuisine, f.Cuisine) {
			continue
		}
		if f.MaxPriceLevel > 0 && r.PriceLevel > f.MaxPriceLevel {
			continue
		}
		if f.MinRating > 0 && r.AggregateRating < f.MinRating {
			continue
		}
		if !hasAmenities(r, f.Amenities) {
			continue
		}
		results = append(results, clone(r))
	}
	return results
}

// GetByID returns the restaurant with id.
func (ix *Index) GetByID(id int64) (model.Restaurant, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	i, ok := ix.byID[id]
	if !ok {
		return model.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, model.ErrNotFound)
	}
	return clone(ix.restaurants[i]), nil
}

// Cuisines returns the distinct cuisines in load order.
func (ix *Index) Cuisines() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, r := range ix.restaurants {
		key := strings.ToLower(r.Cuisine)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r.Cuisine)
	}
	return out
}

func matchesTerm(r model.Restaurant, term string) bool {
	return strings.Contains(strings.ToLower(r.Name), term) ||
		strings.Contains(strings.ToLower(r.Location), term) ||
		strings.Contains(strings.ToLower(r.Cuisine), term)
}

func hasAmenities(r model.Restaurant, required []string) bool {
	for _, want := range required {
		found := false
		for _, have := range r.Amenities {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clone(r model.Restaurant) model.Restaurant {
	r.Amenities = append([]string(nil), r.Amenities...)
	r.Reviews = append([]model.Review(nil), r.Reviews...)
	return r
}

// Source fetches the full catalog.
type Source interface {
	AllRestaurants(ctx context.Context) ([]model.Restaurant, error)
}

// LoadedMsg carries a fetched catalog back to the event loop. Seq is the
// caller's stamp from FetchCmd.
type LoadedMsg struct {
	Seq         uint64
	Restaurants []model.Restaurant
	Err         error
}

// FetchCmd fetches the catalog in the background and stamps the result
// with seq.
func FetchCmd(src Source, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		restaurants, err := src.AllRestaurants(ctx)
		return LoadedMsg{Seq: seq, Restaurants: restaurants, Err: err}
	}
}

// Apply loads a fetch result into ix. On any failure the index is cleared and
// an error notice returned, so the caller can show an empty catalog with a
// retry hint.
func (ix *Index) Apply(msg LoadedMsg) model.Notice {
	err := msg.Err
	if err == nil {
		err = ix.Load(msg.Restaurants)
	}
	if err != nil {
		ix.Clear()
		return model.ErrorNotice("Could not load restaurants. Press ctrl+r to retry.")
	}
	return model.Notice{}
}
