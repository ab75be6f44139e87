package db

import (
	"database/sql"
	"errors"
	"fmt"

	"dineright/internal/model"

	"github.com/goccy/go-json"
)

// SavePreferences replaces the stored preferences of q.UserID.
func SavePreferences(db *sql.DB, q model.PreferenceQuery) error {
	cuisines, err := encodeNames(q.Cuisines)
	if err != nil {
		return err
	}
	types, err := encodeNames(q.RestaurantTypes)
	if err != nil {
		return err
	}
	amenities, err := encodeNames(q.Amenities)
	if err != nil {
		return err
	}

	var atmosphere interface{}
	if q.Atmosphere != "" {
		atmosphere = q.Atmosphere
	}

	_, err = db.Exec(`
		INSERT INTO preferences (user_id, location, radius_km, price_level, atmosphere, cuisines, restaurant_types, amenities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			location = excluded.location,
			radius_km = excluded.radius_km,
			price_level = excluded.price_level,
			atmosphere = excluded.atmosphere,
			cuisines = excluded.cuisines,
			restaurant_types = excluded.restaurant_types,
			amenities = excluded.amenities,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, q.UserID, q.Location, q.RadiusKm, q.PriceLevel, atmosphere, cuisines, types, amenities)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetPreferences returns the stored preferences of userID.
func GetPreferences(db *sql.DB, userID int64) (model.PreferenceQuery, error) {
	q := model.PreferenceQuery{UserID: userID}
	var cuisines, types, amenities string

	err := db.QueryRow(`
		SELECT location, radius_km, price_level, COALESCE(atmosphere, ''), cuisines, restaurant_types, amenities
		FROM preferences
		WHERE user_id = ?
	`, userID).Scan(&q.Location, &q.RadiusKm, &q.PriceLevel, &q.Atmosphere, &cuisines, &types, &amenities)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PreferenceQuery{}, fmt.Errorf("preferences of user %d: %w", userID, model.ErrNotFound)
	}
	if err != nil {
		return model.PreferenceQuery{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	if q.Cuisines, err = decodeNames(cuisines); err != nil {
		return model.PreferenceQuery{}, err
	}
	if q.RestaurantTypes, err = decodeNames(types); err != nil {
		return model.PreferenceQuery{}, err
	}
	if q.Amenities, err = decodeNames(amenities); err != nil {
		return model.PreferenceQuery{}, err
	}
	return q, nil
}

func encodeNames(opts []model.NamedOption) (string, error) {
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode names: %w", err)
	}
	return string(b), nil
}

func decodeNames(s string) ([]model.NamedOption, error) {
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return nil, fmt.Errorf("failed to decode names: %w", err)
	}
	opts := make([]model.NamedOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, model.NamedOption{Name: n})
	}
	return opts, nil
}
