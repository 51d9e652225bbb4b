package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const userColumns = "id, name, avatar_color, created_at"

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		created string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.AvatarColor, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// Users lists every user ordered by name.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// User fetches one user.
func (s *Store) User(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser adds a user. The name is trimmed and must be unique.
func (s *Store) CreateUser(ctx context.Context, name, avatarColor string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("create user", "name is required")
	}
	avatarColor = strings.TrimSpace(avatarColor)
	if avatarColor == "" {
		avatarColor = DefaultAvatarColor
	}
	res, err := s.exec(ctx, "INSERT INTO users (name, avatar_color, created_at) VALUES (?, ?, ?)", name, avatarColor, s.timestamp())
	if isUniqueViolation(err) {
		return nil, conflict("create user", "user already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.User(ctx, id)
}

// DeleteUser removes a user with their reviews and lists.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "user", "DELETE FROM users WHERE id = ?", id)
}
