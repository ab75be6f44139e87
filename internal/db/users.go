package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dineright/internal/model"
)

// User is an account row.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// InsertUser creates an account. Emails are unique, case-insensitively.
func InsertUser(db *sql.DB, name, email, passwordHash string) (int64, error) {
	result, err := db.Exec(
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		name, strings.TrimSpace(email), passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// GetUserByEmail looks an account up by email.
func GetUserByEmail(db *sql.DB, email string) (User, error) {
	var u User
	err := db.QueryRow(
		`SELECT id, name, email, password_hash FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %q: %w", email, model.ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUser looks an account up by id.
func GetUser(db *sql.DB, id int64) (User, error) {
	var u User
	err := db.QueryRow(
		`SELECT id, name, email, password_hash FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
