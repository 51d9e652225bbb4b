package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const listColumns = `l.id, l.user_id, l.name, l.description, l.is_public, l.created_at, u.name,
    (SELECT COUNT(*) FROM list_items WHERE list_id = l.id) AS item_count`

func scanList(row rowScanner) (*List, error) {
	var (
		l           List
		description sql.NullString
		public      int
		created     string
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &description, &public, &created, &l.UserName, &l.ItemCount); err != nil {
		return nil, err
	}
	l.Description = stringPtr(description)
	l.IsPublic = public != 0
	l.CreatedAt = parseTime(created)
	return &l, nil
}

// Lists returns public lists plus, when userID is set, that user's private ones.
func (s *Store) Lists(ctx context.Context, userID *int64) ([]List, error) {
	query := "SELECT " + listColumns + " FROM lists l JOIN users u ON l.user_id = u.id"
	var args []any
	if userID != nil {
		query += " WHERE l.user_id = ? OR l.is_public = 1"
		args = append(args, *userID)
	} else {
		query += " WHERE l.is_public = 1"
	}
	query += " ORDER BY l.created_at DESC, l.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := make([]List, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *Store) list(ctx context.Context, id int64) (*List, error) {
	l, err := scanList(s.db.QueryRowContext(ctx,
		"SELECT "+listColumns+" FROM lists l JOIN users u ON l.user_id = u.id WHERE l.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("list")
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// List fetches a list with its items, most recently added first.
func (s *Store) List(ctx context.Context, id int64) (*ListDetail, error) {
	l, err := s.list(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+", li.added_at FROM items i JOIN list_items li ON i.id = li.item_id WHERE li.list_id = ? ORDER BY li.added_at DESC, i.id DESC",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	detail := &ListDetail{List: *l, Items: make([]ListEntry, 0)}
	for rows.Next() {
		var added string
		item, err := scanItem(rows, &added)
		if err != nil {
			return nil, fmt.Errorf("scan list entry: %w", err)
		}
		detail.Items = append(detail.Items, ListEntry{Item: *item, AddedAt: parseTime(added)})
	}
	return detail, rows.Err()
}

// CreateList adds a list owned by in.UserID.
func (s *Store) CreateList(ctx context.Context, in ListInput) (*List, error) {
	name := strings.TrimSpace(in.Name)
	if in.UserID <= 0 || name == "" {
		return nil, invalid("create list", "user_id and name are required")
	}
	public := in.IsPublic == nil || *in.IsPublic
	res, err := s.exec(ctx,
		"INSERT INTO lists (user_id, name, description, is_public, created_at) VALUES (?, ?, ?, ?, ?)",
		in.UserID, name, nullable(in.Description), boolToInt(public), s.timestamp(),
	)
	if isForeignKeyViolation(err) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.list(ctx, id)
}

// UpdateList renames a list and optionally changes its visibility.
func (s *Store) UpdateList(ctx context.Context, id int64, in ListUpdate) (*List, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("update list", "name is required")
	}
	var public any
	if in.IsPublic != nil {
		public = boolToInt(*in.IsPublic)
	}
	err := s.execAffecting(ctx, "list",
		"UPDATE lists SET name = ?, description = ?, is_public = COALESCE(?, is_public) WHERE id = ?",
		name, nullable(in.Description), public, id,
	)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, id)
}

// DeleteList removes a list and its memberships.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "list", "DELETE FROM lists WHERE id = ?", id)
}

// AddToList puts an item in a list. Adding an item twice is a no-op.
func (s *Store) AddToList(ctx context.Context, listID, itemID int64) error {
	_, err := s.exec(ctx,
		"INSERT OR IGNORE INTO list_items (list_id, item_id, added_at) VALUES (?, ?, ?)",
		listID, itemID, s.timestamp(),
	)
	if isForeignKeyViolation(err) {
		return notFound("list or item")
	}
	if err != nil {
		return fmt.Errorf("add list item: %w", err)
	}
	return nil
}

// RemoveFromList takes an item out of a list.
func (s *Store) RemoveFromList(ctx context.Context, listID, itemID int64) error {
	return s.execAffecting(ctx, "list item", "DELETE FROM list_items WHERE list_id = ? AND item_id = ?", listID, itemID)
}
