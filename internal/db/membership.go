package db

import (
	"database/sql"
	"fmt"
)

// Membership tables.
const (
	Wishlist = "wishlist"
	Visited  = "visited"
)

func checkTable(table string) error {
	if table != Wishlist && table != Visited {
		return fmt.Errorf("unknown membership table %q", table)
	}
	return nil
}

// AddMember records restaurantID in the user's table. Adding twice is a no-op.
func AddMember(db *sql.DB, table string, userID, restaurantID int64) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (user_id, restaurant_id) VALUES (?, ?)`, table)
	if _, err := db.Exec(query, userID, restaurantID); err != nil {
		return fmt.Errorf("failed to add to %s: %w", table, err)
	}
	return nil
}

// RemoveMember deletes restaurantID from the user's table. Removing an absent
// entry is a no-op.
func RemoveMember(db *sql.DB, table string, userID, restaurantID int64) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND restaurant_id = ?`, table)
	if _, err := db.Exec(query, userID, restaurantID); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", table, err)
	}
	return nil
}

// ListMembers returns the restaurant ids in the user's table, oldest first.
func ListMembers(db *sql.DB, table string, userID int64) ([]int64, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT restaurant_id FROM %s WHERE user_id = ? ORDER BY created_at, restaurant_id`, table)
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}
	return ids, nil
}
