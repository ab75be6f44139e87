package db

import (
	"database/sql"
	"errors"
	"fmt"

	"dineright/internal/model"

	"github.com/goccy/go-json"
)

const restaurantColumns = `
	r.id,
	r.name,
	r.location,
	r.cuisine,
	r.price_level,
	COALESCE(r.atmosphere, ''),
	r.amenities,
	COALESCE(r.phone_number, ''),
	COALESCE((SELECT AVG(rv.rating) FROM reviews rv WHERE rv.restaurant_id = r.id), 0)
`

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row scanner) (model.Restaurant, error) {
	var r model.Restaurant
	var amenities string
	if err := row.Scan(&r.ID, &r.Name, &r.Location, &r.Cuisine, &r.PriceLevel, &r.Atmosphere, &amenities, &r.PhoneNumber, &r.AggregateRating); err != nil {
		return model.Restaurant{}, err
	}
	if err := json.Unmarshal([]byte(amenities), &r.Amenities); err != nil {
		return model.Restaurant{}, fmt.Errorf("failed to decode amenities of restaurant %d: %w", r.ID, err)
	}
	return r, nil
}

// ListRestaurants returns every restaurant with its reviews, ordered by id.
func ListRestaurants(db *sql.DB) ([]model.Restaurant, error) {
	rows, err := db.Query(`SELECT ` + restaurantColumns + ` FROM restaurants r ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var results []model.Restaurant
	index := make(map[int64]int)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		index[r.ID] = len(results)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	reviews, err := db.Query(`SELECT restaurant_id, author, rating, COALESCE(comment, '') FROM reviews ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer reviews.Close()

	for reviews.Next() {
		var restaurantID int64
		var rv model.Review
		if err := reviews.Scan(&restaurantID, &rv.AuthorLabel, &rv.Rating, &rv.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if i, ok := index[restaurantID]; ok {
			results[i].Reviews = append(results[i].Reviews, rv)
		}
	}
	if err := reviews.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}

	return results, nil
}

// GetRestaurant retrieves a single restaurant with its reviews.
func GetRestaurant(db *sql.DB, id int64) (model.Restaurant, error) {
	r, err := scanRestaurant(db.QueryRow(`SELECT `+restaurantColumns+` FROM restaurants r WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("failed to get restaurant: %w", err)
	}

	rows, err := db.Query(`
		SELECT author, rating, COALESCE(comment, '')
		FROM reviews
		WHERE restaurant_id = ?
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.AuthorLabel, &rv.Rating, &rv.Comment); err != nil {
			return model.Restaurant{}, fmt.Errorf("failed to scan review: %w", err)
		}
		r.Reviews = append(r.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return model.Restaurant{}, fmt.Errorf("error iterating review rows: %w", err)
	}

	return r, nil
}

// InsertRestaurant creates a restaurant. Reviews on r are ignored; use
// InsertReview. A zero r.ID lets SQLite choose one.
func InsertRestaurant(db *sql.DB, r model.Restaurant) (int64, error) {
	query := `
		INSERT INTO restaurants (id, name, location, cuisine, price_level, atmosphere, amenities, phone_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var id, atmosphere, phone interface{}
	if r.ID != 0 {
		id = r.ID
	}
	if r.Atmosphere != "" {
		atmosphere = r.Atmosphere
	}
	if r.PhoneNumber != "" {
		phone = r.PhoneNumber
	}

	amenities, err := encodeStrings(r.Amenities)
	if err != nil {
		return 0, err
	}

	result, err := db.Exec(query, id, r.Name, r.Location, r.Cuisine, r.PriceLevel, atmosphere, amenities, phone)
	if err != nil {
		return 0, fmt.Errorf("failed to insert restaurant: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return newID, nil
}

// CountRestaurants returns the number of restaurants.
func CountRestaurants(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM restaurants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	return n, nil
}

// RestaurantExists reports whether id names a restaurant.
func RestaurantExists(db *sql.DB, id int64) (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM restaurants WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check restaurant: %w", err)
	}
	return n > 0, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode amenities: %w", err)
	}
	return string(b), nil
}
