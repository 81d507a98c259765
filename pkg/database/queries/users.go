package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type User struct {
	ID           int
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	var user User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Upsert creates the user or replaces its password hash.
func (r *UserRepository) Upsert(ctx context.Context, username, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, created_at`

	var user User
	user.Username = username
	user.PasswordHash = passwordHash

	err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// StaticUserRepository serves a fixed set of users from memory. It stands
// in for the users table when the service runs without a database.
type StaticUserRepository struct {
	users map[string]User
}

func NewStaticUserRepository(users ...User) *StaticUserRepository {
	r := &StaticUserRepository{users: make(map[string]User, len(users))}
	for i, u := range users {
		if u.ID == 0 {
			u.ID = i + 1
		}
		r.users[u.Username] = u
	}
	return r
}

func (r *StaticUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
