package db

import (
	"database/sql"
	"fmt"

	"dineright/internal/model"
)

// SampleRestaurants is the catalog an empty database is seeded with.
var SampleRestaurants = []model.Restaurant{
	{
		ID:          1,
		Name:        "Blue Ocean Seafood",
		Location:    "Miami",
		Cuisine:     "Seafood",
		PriceLevel:  3,
		Atmosphere:  "Casual",
		Amenities:   []string{"Outdoor seating", "Parking"},
		PhoneNumber: "+1 305 555 0101",
		Reviews: []model.Review{
			{AuthorLabel: "Maya", Rating: 5, Comment: "Best grilled snapper on the beach."},
			{AuthorLabel: "Luis", Rating: 4, Comment: "Fresh, a bit loud on weekends."},
		},
	},
	{
		ID:          2,
		Name:        "Spice Route",
		Location:    "New York",
		Cuisine:     "Indian",
		PriceLevel:  2,
		Atmosphere:  "Cozy",
		Amenities:   []string{"Vegan options", "Wi-Fi"},
		PhoneNumber: "+1 212 555 0144",
		Reviews: []model.Review{
			{AuthorLabel: "Priya", Rating: 4, Comment: "Great thali."},
			{AuthorLabel: "Sam", Rating: 4, Comment: "Solid curries, friendly staff."},
			{AuthorLabel: "Ana", Rating: 5, Comment: "The dal makhani is outstanding."},
		},
	},
	{
		ID:          3,
		Name:        "Tokyo Sushi House",
		Location:    "San Francisco",
		Cuisine:     "Japanese",
		PriceLevel:  4,
		Atmosphere:  "Upscale",
		Amenities:   []string{"Reservations"},
		PhoneNumber: "+1 415 555 0190",
		Reviews: []model.Review{
			{AuthorLabel: "Ken", Rating: 5, Comment: "Omakase worth every cent."},
			{AuthorLabel: "Jo", Rating: 5, Comment: "Impeccable fish."},
		},
	},
}

// Seed inserts restaurants and their reviews into an empty catalog. It does
// nothing when restaurants already exist.
func Seed(db *sql.DB, restaurants []model.Restaurant) error {
	n, err := CountRestaurants(db)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range restaurants {
		amenities, err := encodeStrings(r.Amenities)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO restaurants (id, name, location, cuisine, price_level, atmosphere, amenities, phone_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.Name, r.Location, r.Cuisine, r.PriceLevel, r.Atmosphere, amenities, r.PhoneNumber); err != nil {
			return fmt.Errorf("failed to seed restaurant %q: %w", r.Name, err)
		}

		for _, rv := range r.Reviews {
			if _, err := tx.Exec(`
				INSERT INTO reviews (restaurant_id, author, rating, comment)
				VALUES (?, ?, ?, ?)
			`, r.ID, rv.AuthorLabel, rv.Rating, rv.Comment); err != nil {
				return fmt.Errorf("failed to seed review: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
