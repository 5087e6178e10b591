package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/models"
	"github.com/mmynk/lunchclub/internal/roster"
	"github.com/mmynk/lunchclub/internal/service"
)

func (a *app) generate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("generate", "generate [--n N] [--seed S] [--roster FILE] [--date YYYYMMDD] [--no-departments] [--commit]")
	n := fs.Int("n", a.cfg.MinGroupSize, "Minimum group size")
	seed := fs.Uint64("seed", 0, "Random seed for a reproducible formation (default: random)")
	rosterPath := fs.String("roster", "", "Roster file (username<TAB>department); defaults to the stored roster")
	date := fs.String("date", "", "Formation date (YYYYMMDD) ending the history window (default: today)")
	noDepartments := fs.Bool("no-departments", false, "Print usernames without |department")
	commit := fs.Bool("commit", false, "Store the formed groups as a round for the formation date")
	if err := fs.Parse(args); err != nil {
		return err
	}

	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	if !seedSet {
		*seed = rand.Uint64()
	}

	formationDate := roster.Today()
	if *date != "" {
		d, err := roster.ParseDate(*date)
		if err != nil {
			return err
		}
		formationDate = d
	}

	var members grouping.Roster
	if *rosterPath != "" {
		in, err := a.openInput(*rosterPath)
		if err != nil {
			return err
		}
		members, err = roster.ReadRoster(in)
		in.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", *rosterPath, err)
		}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	planner := service.NewPlanner(store, a.cfg.HistoryWindow)
	plan, err := planner.Plan(ctx, members, *n, formationDate, service.NewRand(*seed))
	if err != nil {
		return err
	}

	slog.Info("Groups formed",
		"groups", len(plan.Groups),
		"seed", *seed,
		"history_rounds", plan.HistoryRounds,
		"repeat_pairs", plan.RepeatPairs,
	)

	showDepartments := a.cfg.ShowDepartments && !*noDepartments
	if err := roster.WriteGroups(a.stdout, plan.Groups, showDepartments); err != nil {
		return err
	}
	if !*commit {
		return nil
	}

	round := &models.Round{FormationDate: formationDate, Groups: roster.FromGrouping(plan.Groups)}
	if err := store.CreateRound(ctx, round); err != nil {
		return err
	}
	slog.Info("Round committed",
		"round_id", round.ID,
		"formation_date", formationDate.Format(roster.DateLayout),
		"members", round.MemberCount(),
	)
	return nil
}
