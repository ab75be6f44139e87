package db

import (
	"database/sql"
	"fmt"

	"dineright/internal/model"
)

// InsertReview appends a review by a registered user.
func InsertReview(db *sql.DB, r model.NewReview, author string) (int64, error) {
	var comment interface{}
	if r.Comment != "" {
		comment = r.Comment
	}

	result, err := db.Exec(`
		INSERT INTO reviews (restaurant_id, user_id, author, rating, comment)
		VALUES (?, ?, ?, ?, ?)
	`, r.RestaurantID, r.UserID, author, r.Rating, comment)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// ReviewsByUser lists a user's reviews, newest first.
func ReviewsByUser(db *sql.DB, userID int64) ([]model.WrittenReview, error) {
	rows, err := db.Query(`
		SELECT rv.restaurant_id, r.name, rv.rating, COALESCE(rv.comment, '')
		FROM reviews rv
		JOIN restaurants r ON r.id = rv.restaurant_id
		WHERE rv.user_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	results := []model.WrittenReview{}
	for rows.Next() {
		var w model.WrittenReview
		if err := rows.Scan(&w.RestaurantID, &w.RestaurantName, &w.Rating, &w.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}
	return results, nil
}
