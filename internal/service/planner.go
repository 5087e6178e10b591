package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/roster"
	"github.com/mmynk/lunchclub/internal/storage"
)

// Plan is the result of one formation.
type Plan struct {
	Groups []*grouping.Group

	// RepeatPairs counts grouped pairs that already met inside the window.
	RepeatPairs int

	// HistoryRounds is the number of committed rounds that fed the history.
	HistoryRounds int
}

// Planner loads roster and history from storage and forms groups.
// It is shared by the RPC service and the CLI.
type Planner struct {
	store  storage.Store
	window time.Duration
}

// NewPlanner creates a planner whose history covers window before the
// formation date. A zero window ignores history.
func NewPlanner(store storage.Store, window time.Duration) *Planner {
	return &Planner{store: store, window: window}
}

// Plan forms groups for formationDate. When members is nil the stored roster
// is used.
func (p *Planner) Plan(ctx context.Context, members grouping.Roster, minGroupSize int, formationDate time.Time, rng *rand.Rand) (*Plan, error) {
	if members == nil {
		stored, err := p.store.ListMembers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster: %w", err)
		}
		members = roster.ToRoster(stored)
	}

	history, rounds, err := p.history(ctx, formationDate)
	if err != nil {
		return nil, err
	}

	groups, err := grouping.Form(members, minGroupSize, history, rng)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Groups:        groups,
		RepeatPairs:   grouping.RepeatPairs(groups),
		HistoryRounds: rounds,
	}
	slog.Debug("Groups formed",
		"members", len(members),
		"groups", len(groups),
		"history_rounds", rounds,
		"repeat_pairs", plan.RepeatPairs,
	)
	return plan, nil
}

// history builds previous matches from rounds formed in the window ending on
// formationDate, that day included.
func (p *Planner) history(ctx context.Context, formationDate time.Time) (grouping.History, int, error) {
	if p.window <= 0 {
		return nil, 0, nil
	}

	until := formationDate.AddDate(0, 0, 1)
	rounds, err := p.store.ListRoundsSince(ctx, formationDate.Add(-p.window), until)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load history: %w", err)
	}
	return roster.HistoryFromRounds(rounds), len(rounds), nil
}
