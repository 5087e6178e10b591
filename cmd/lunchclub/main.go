// Command lunchclub forms cross-department lunch groups and keeps a history
// of committed rounds so people are not paired with the same colleagues
// over and over.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/lunchclub/internal/config"
	"github.com/mmynk/lunchclub/internal/storage/sqlite"
	"github.com/mmynk/lunchclub/pkg/logging"
)

var errUsage = errors.New("usage")

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("lunchclub failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lunchclub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultPath, "Path to the YAML config file")
	verbose := fs.Bool("verbose", false, "Log at debug level")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lunchclub [--config FILE] [--verbose] <command> [options]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  generate       form lunch groups and print them\n")
		fmt.Fprintf(stderr, "  commit FILE    store printed groups as a round\n")
		fmt.Fprintf(stderr, "  import FILE    replace the stored roster\n")
		fmt.Fprintf(stderr, "  serve          run the Connect server\n")
		fmt.Fprintf(stderr, "  hash-password  read a password from stdin and print its bcrypt hash\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if *verbose {
		level = slog.LevelDebug
	}
	logging.Setup(stderr, level)
	slog.Debug("Config loaded", "path", *configPath, "database", cfg.Database)

	a := &app{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "generate":
		return a.generate(ctx, rest)
	case "commit":
		return a.commit(ctx, rest)
	case "import":
		return a.importRoster(ctx, rest)
	case "serve":
		return a.serve(ctx, rest)
	case "hash-password":
		return a.hashPassword(rest)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *app) openStore() (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.cfg.Database, err)
	}
	return store, nil
}

// newFlagSet creates a subcommand flag set that reports errors instead of
// exiting.
func (a *app) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: lunchclub %s\n\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// openInput opens path for reading; "-" means stdin.
func (a *app) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
