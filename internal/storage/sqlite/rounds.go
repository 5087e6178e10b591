package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/lunchclub/internal/models"
	"github.com/mmynk/lunchclub/internal/storage"
)

// CreateRound persists a round with its groups and memberships.
func (s *SQLiteStore) CreateRound(ctx context.Context, round *models.Round) error {
	// Generate IDs if not set
	if round.ID == "" {
		round.ID = uuid.New().String()
	}
	if round.CreatedAt == 0 {
		round.CreatedAt = time.Now().Unix()
	}
	for i := range round.Groups {
		g := &round.Groups[i]
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		g.Position = i
	}

	return withBusyRetry(ctx, "create round", func() error {
		return s.insertRound(ctx, round)
	})
}

func (s *SQLiteStore) insertRound(ctx context.Context, round *models.Round) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO rounds (id, formation_date, created_at) VALUES (?, ?, ?)",
		round.ID, round.FormationDate.Unix(), round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}

	for _, g := range round.Groups {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO lunch_groups (id, round_id, position) VALUES (?, ?, ?)",
			g.ID, round.ID, g.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for pos, username := range g.Members {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO group_members (group_id, position, username) VALUES (?, ?, ?)",
				g.ID, pos, username,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRound retrieves a round by ID, including all groups and members.
func (s *SQLiteStore) GetRound(ctx context.Context, roundID string) (*models.Round, error) {
	round := &models.Round{}
	var formed int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, formation_date, created_at FROM rounds WHERE id = ?",
		roundID,
	).Scan(&round.ID, &formed, &round.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("round %s: %w", roundID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	round.FormationDate = time.Unix(formed, 0).UTC()

	round.Groups, err = s.loadGroups(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	return round, nil
}

// ListRounds returns round summaries, newest formation date first.
func (s *SQLiteStore) ListRounds(ctx context.Context) ([]models.RoundSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.formation_date, r.created_at,
		       (SELECT COUNT(*) FROM lunch_groups g WHERE g.round_id = r.id),
		       (SELECT COUNT(*) FROM group_members m
		          JOIN lunch_groups g ON g.id = m.group_id
		         WHERE g.round_id = r.id)
		FROM rounds r
		ORDER BY r.formation_date DESC, r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var summaries []models.RoundSummary
	for rows.Next() {
		var rs models.RoundSummary
		var formed int64
		if err := rows.Scan(&rs.ID, &formed, &rs.CreatedAt, &rs.GroupCount, &rs.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rs.FormationDate = time.Unix(formed, 0).UTC()
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}

	return summaries, nil
}

// ListRoundsSince returns complete rounds formed in [since, until), oldest first.
func (s *SQLiteStore) ListRoundsSince(ctx context.Context, since, until time.Time) ([]models.Round, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, formation_date, created_at FROM rounds
		 WHERE formation_date >= ? AND formation_date < ?
		 ORDER BY formation_date, created_at`,
		since.Unix(), until.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	var rounds []models.Round
	for rows.Next() {
		var r models.Round
		var formed int64
		if err := rows.Scan(&r.ID, &formed, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		r.FormationDate = time.Unix(formed, 0).UTC()
		rounds = append(rounds, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}

	for i := range rounds {
		rounds[i].Groups, err = s.loadGroups(ctx, rounds[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return rounds, nil
}

// loadGroups reads the groups of one round in position order.
func (s *SQLiteStore) loadGroups(ctx context.Context, roundID string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.position, m.username
		FROM lunch_groups g
		LEFT JOIN group_members m ON m.group_id = g.id
		WHERE g.round_id = ?
		ORDER BY g.position, m.position`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var id string
		var position int
		var username sql.NullString
		if err := rows.Scan(&id, &position, &username); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}

		if len(groups) == 0 || groups[len(groups)-1].ID != id {
			groups = append(groups, models.Group{ID: id, Position: position})
		}
		if username.Valid {
			last := &groups[len(groups)-1]
			last.Members = append(last.Members, username.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}
