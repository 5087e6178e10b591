package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/lunchclub/internal/models"
	"github.com/mmynk/lunchclub/internal/roster"
)

func (a *app) commit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("commit", "commit [--date YYYYMMDD] FILE")
	date := fs.String("date", "", "Formation date (YYYYMMDD) of the round (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: commit takes exactly one FILE", errUsage)
	}

	formationDate := roster.Today()
	if *date != "" {
		d, err := roster.ParseDate(*date)
		if err != nil {
			return err
		}
		formationDate = d
	}

	path := fs.Arg(0)
	in, err := a.openInput(path)
	if err != nil {
		return err
	}
	groups, err := roster.ReadGroups(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(groups) == 0 {
		return errors.New(path + ": no groups to commit")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	round := &models.Round{FormationDate: formationDate, Groups: groups}
	if err := store.CreateRound(ctx, round); err != nil {
		return err
	}

	slog.Info("Round committed",
		"round_id", round.ID,
		"formation_date", formationDate.Format(roster.DateLayout),
		"groups", len(groups),
		"members", round.MemberCount(),
	)
	_, err = fmt.Fprintln(a.stdout, round.ID)
	return err
}
