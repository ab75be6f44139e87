package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dineright/internal/model"
)

// MaxRecommendations caps the recommendation list.
const MaxRecommendations = 10

// Recommend ranks restaurants for userID. Restaurants the user has visited
// are excluded. Those matching a saved cuisine (or, without cuisines, the
// saved location) and within the saved price level come first, ordered by
// rating; when nothing matches, the top rated remaining restaurants are
// returned instead.
func Recommend(db *sql.DB, userID int64) ([]model.RestaurantRef, error) {
	prefs, err := GetPreferences(db, userID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	visited, err := ListMembers(db, Visited, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(visited))
	for _, id := range visited {
		seen[id] = true
	}

	all, err := ListRestaurants(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	var candidates, matches []model.Restaurant
	for _, r := range all {
		if seen[r.ID] {
			continue
		}
		candidates = append(candidates, r)
		if matchesPreferences(r, prefs) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		matches = candidates
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AggregateRating > matches[j].AggregateRating
	})
	if len(matches) > MaxRecommendations {
		matches = matches[:MaxRecommendations]
	}

	refs := make([]model.RestaurantRef, 0, len(matches))
	for _, r := range matches {
		refs = append(refs, model.RestaurantRef{
			PlaceID:  r.ID,
			Name:     r.Name,
			Location: r.Location,
			Cuisines: r.Cuisine,
		})
	}
	return refs, nil
}

func matchesPreferences(r model.Restaurant, prefs model.PreferenceQuery) bool {
	if prefs.Location == "" {
		return false
	}
	if prefs.PriceLevel > 0 && r.PriceLevel > prefs.PriceLevel {
		return false
	}
	if len(prefs.Cuisines) == 0 {
		return strings.Contains(strings.ToLower(r.Location), strings.ToLower(prefs.Location))
	}
	for _, c := range prefs.Cuisines {
		if strings.EqualFold(c.Name, r.Cuisine) {
			return true
		}
	}
	return false
}
