package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/lunchclub/internal/roster"
)

func (a *app) importRoster(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import", "import FILE")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: import takes exactly one FILE", errUsage)
	}

	path := fs.Arg(0)
	in, err := a.openInput(path)
	if err != nil {
		return err
	}
	members, err := roster.ReadMembers(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceRoster(ctx, members); err != nil {
		return err
	}

	slog.Info("Roster imported", "path", path, "members", len(members))
	return nil
}
