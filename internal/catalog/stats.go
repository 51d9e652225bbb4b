package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"varologs/internal/media"
)

// Stats summarizes the catalog. When userID is set the result includes that
// user's review counts.
func (s *Store) Stats(ctx context.Context, userID *int64) (*Stats, error) {
	stats := &Stats{ItemsByType: make([]TypeCount, 0)}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&stats.TotalItems); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) AS count FROM items GROUP BY type ORDER BY count DESC, type")
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	for rows.Next() {
		var (
			t  string
			tc TypeCount
		)
		if err := rows.Scan(&t, &tc.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		tc.Type = media.Type(t)
		stats.ItemsByType = append(stats.ItemsByType, tc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if userID == nil {
		return stats, nil
	}
	var (
		us  UserStats
		avg sql.NullFloat64
	)
	err = s.db.QueryRowContext(ctx, `SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            AVG(rating)
        FROM reviews WHERE user_id = ?`,
		string(StatusCompleted), *userID,
	).Scan(&us.Reviewed, &us.Completed, &avg)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	us.AvgRating = floatPtr(avg)
	stats.UserStats = &us
	return stats, nil
}
