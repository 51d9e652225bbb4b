package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"varologs/internal/media"
)

const itemColumns = `i.id, i.type, i.title, i.year, i.creator, i.genre, i.synopsis, i.cover_url,
    i.created_by, i.created_at, i.platform, i.developer, i.publisher, i.duration_min,
    i.pages, i.episodes, i.seasons, i.isbn, i.metadata, i.status,
    (SELECT AVG(rating) FROM reviews WHERE item_id = i.id AND rating IS NOT NULL) AS avg_rating,
    (SELECT COUNT(*) FROM reviews WHERE item_id = i.id) AS review_count`

func scanItem(row rowScanner, extra ...any) (*Item, error) {
	var (
		item                                  Item
		itemType, created                     string
		year, createdBy                       sql.NullInt64
		creator, genre, synopsis, coverURL    sql.NullString
		platform, developer, publisher, isbn  sql.NullString
		durationMin, pages, episodes, seasons sql.NullInt64
		metadata, status                      sql.NullString
		avgRating                             sql.NullFloat64
	)
	dest := []any{
		&item.ID, &itemType, &item.Title, &year, &creator, &genre, &synopsis, &coverURL,
		&createdBy, &created, &platform, &developer, &publisher, &durationMin,
		&pages, &episodes, &seasons, &isbn, &metadata, &status,
		&avgRating, &item.ReviewCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	item.Type = media.Type(itemType)
	item.Year = intPtr(year)
	item.Creator = stringPtr(creator)
	item.Genre = stringPtr(genre)
	item.Synopsis = stringPtr(synopsis)
	item.CoverURL = stringPtr(coverURL)
	item.CreatedBy = int64Ptr(createdBy)
	item.CreatedAt = parseTime(created)
	item.Details = Details{
		Platform:    stringPtr(platform),
		Developer:   stringPtr(developer),
		Publisher:   stringPtr(publisher),
		DurationMin: intPtr(durationMin),
		Pages:       intPtr(pages),
		Episodes:    intPtr(episodes),
		Seasons:     intPtr(seasons),
		ISBN:        stringPtr(isbn),
	}
	item.Metadata = stringPtr(metadata)
	item.Status = stringPtr(status)
	item.AvgRating = floatPtr(avgRating)
	return &item, nil
}

func (in ItemInput) normalize(what string) (ItemInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, invalid(what, "title is required")
	}
	if !in.Type.Valid() {
		return in, invalid(what, fmt.Sprintf("unknown media type %q", in.Type))
	}
	return in, nil
}

// Items lists items newest first.
func (s *Store) Items(ctx context.Context, filter ItemFilter) ([]Item, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, string(filter.Type))
	}
	switch {
	case filter.UserID != nil && filter.Status != "":
		where = append(where, "EXISTS (SELECT 1 FROM reviews r WHERE r.item_id = i.id AND r.user_id = ? AND r.status = ?)")
		args = append(args, *filter.UserID, string(filter.Status))
	case filter.UserID != nil:
		where = append(where, "(i.created_by = ? OR EXISTS (SELECT 1 FROM reviews r WHERE r.item_id = i.id AND r.user_id = ?))")
		args = append(args, *filter.UserID, *filter.UserID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, "(i.title LIKE ? OR i.creator LIKE ?)")
		args = append(args, pattern, pattern)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultItemLimit
	}
	offset := max(filter.Offset, 0)

	query := "SELECT " + itemColumns + " FROM items i"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Item fetches one item without its reviews.
func (s *Store) Item(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items i WHERE i.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("item")
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ItemDetail fetches an item with its average rating and all reviews.
func (s *Store) ItemDetail(ctx context.Context, id int64) (*ItemDetail, error) {
	item, err := s.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewsForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ItemDetail{Item: *item, Reviews: reviews}, nil
}

// CreateItem inserts an item. When the same type, title and year already
// exist it returns the existing row and created is false.
func (s *Store) CreateItem(ctx context.Context, in ItemInput) (item *Item, created bool, err error) {
	in, err = in.normalize("create item")
	if err != nil {
		return nil, false, err
	}
	res, err := s.exec(ctx, `INSERT INTO items (
            type, title, year, creator, genre, synopsis, cover_url, created_by, created_at,
            platform, developer, publisher, duration_min, pages, episodes, seasons, isbn, metadata, status
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(in.Type), in.Title, nullable(in.Year), nullable(in.Creator), nullable(in.Genre),
		nullable(in.Synopsis), nullable(in.CoverURL), nullable(in.CreatedBy), s.timestamp(),
		nullable(in.Platform), nullable(in.Developer), nullable(in.Publisher), nullable(in.DurationMin),
		nullable(in.Pages), nullable(in.Episodes), nullable(in.Seasons), nullable(in.ISBN),
		nullable(in.Metadata), nullable(in.Status),
	)
	if isUniqueViolation(err) {
		existing, findErr := s.findItem(ctx, in.Type, in.Title, in.Year)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if isForeignKeyViolation(err) {
		return nil, false, invalid("create item", "created_by references an unknown user")
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	item, err = s.Item(ctx, id)
	return item, err == nil, err
}

func (s *Store) findItem(ctx context.Context, t media.Type, title string, year *int) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items i WHERE i.type = ? AND i.title = ? AND i.year IS ?",
		string(t), title, nullable(year),
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, conflict("create item", "item exists but could not be read back")
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces every writable field except type and creator.
func (s *Store) UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("update item", "title is required")
	}
	err := s.execAffecting(ctx, "item", `UPDATE items SET
            title = ?, year = ?, creator = ?, genre = ?, synopsis = ?, cover_url = ?,
            platform = ?, developer = ?, publisher = ?, duration_min = ?, pages = ?,
            episodes = ?, seasons = ?, isbn = ?, metadata = ?, status = ?
        WHERE id = ?`,
		in.Title, nullable(in.Year), nullable(in.Creator), nullable(in.Genre), nullable(in.Synopsis),
		nullable(in.CoverURL), nullable(in.Platform), nullable(in.Developer), nullable(in.Publisher),
		nullable(in.DurationMin), nullable(in.Pages), nullable(in.Episodes), nullable(in.Seasons),
		nullable(in.ISBN), nullable(in.Metadata), nullable(in.Status), id,
	)
	if isUniqueViolation(err) {
		return nil, conflict("update item", "another item has the same type, title and year")
	}
	if err != nil {
		return nil, err
	}
	return s.Item(ctx, id)
}

// DeleteItem removes an item with its reviews and list memberships.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "item", "DELETE FROM items WHERE id = ?", id)
}
