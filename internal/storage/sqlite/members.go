package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/lunchclub/internal/models"
)

// ReplaceRoster deletes the current roster and inserts members in one transaction.
func (s *SQLiteStore) ReplaceRoster(ctx context.Context, members []models.Member) error {
	return withBusyRetry(ctx, "replace roster", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, "DELETE FROM members"); err != nil {
			return fmt.Errorf("failed to clear roster: %w", err)
		}

		for _, m := range members {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO members (username, department) VALUES (?, ?)",
				m.Username, m.Department,
			)
			if err != nil {
				return fmt.Errorf("failed to insert member %s: %w", m.Username, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// ListMembers returns every roster member ordered by username.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, department FROM members ORDER BY username",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.Username, &m.Department); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
