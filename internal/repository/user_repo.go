package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"battery_analysis/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL       = `INSERT INTO users (name, created_at) VALUES (?, ?)`
	selectUserByNameSQL = `SELECT id, name, created_at FROM users WHERE name = ?`
)

// Create inserts a new user and returns its ID.
func (r *UserRepository) Create(ctx context.Context, name string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, name, toSQLiteTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("insert user %q: %w", name, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", name, err)
	}
	return int(lastID), nil
}

// GetByName fetches a user by name. Returns (nil, nil) if not found.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByNameSQL, name).Scan(&u.ID, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", name, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
