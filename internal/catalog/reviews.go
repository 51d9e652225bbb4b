package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const reviewColumns = `r.id, r.item_id, r.user_id, r.rating, r.status, r.review_text, r.updated_at,
    u.name, u.avatar_color`

func scanReview(row rowScanner) (*Review, error) {
	var (
		r       Review
		status  string
		rating  sql.NullFloat64
		text    sql.NullString
		updated string
	)
	if err := row.Scan(&r.ID, &r.ItemID, &r.UserID, &rating, &status, &text, &updated, &r.UserName, &r.AvatarColor); err != nil {
		return nil, err
	}
	r.Status = ReviewStatus(status)
	r.Rating = floatPtr(rating)
	r.ReviewText = stringPtr(text)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}

func (s *Store) reviewsForItem(ctx context.Context, itemID int64) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews r JOIN users u ON r.user_id = u.id WHERE r.item_id = ? ORDER BY r.updated_at DESC, r.id DESC",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

// UpsertReview creates or replaces the user's review of an item. Status
// defaults to pending.
func (s *Store) UpsertReview(ctx context.Context, itemID int64, in ReviewInput) (*Review, error) {
	if in.UserID <= 0 {
		return nil, invalid("upsert review", "user_id is required")
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.Valid() {
		return nil, invalid("upsert review", fmt.Sprintf("unknown status %q", in.Status))
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 10) {
		return nil, invalid("upsert review", "rating must be between 0 and 10")
	}
	if _, err := s.Item(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.timestamp()
	_, err := s.exec(ctx, `INSERT INTO reviews (item_id, user_id, rating, status, review_text, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(item_id, user_id) DO UPDATE SET
            rating = excluded.rating,
            status = excluded.status,
            review_text = excluded.review_text,
            updated_at = excluded.updated_at`,
		itemID, in.UserID, nullable(in.Rating), string(in.Status), nullable(in.ReviewText), now,
	)
	if isForeignKeyViolation(err) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	r, err := scanReview(s.db.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews r JOIN users u ON r.user_id = u.id WHERE r.item_id = ? AND r.user_id = ?",
		itemID, in.UserID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("review")
	}
	if err != nil {
		return nil, fmt.Errorf("read review: %w", err)
	}
	return r, nil
}

// DeleteReview removes the user's review of an item.
func (s *Store) DeleteReview(ctx context.Context, itemID, userID int64) error {
	return s.execAffecting(ctx, "review", "DELETE FROM reviews WHERE item_id = ? AND user_id = ?", itemID, userID)
}
