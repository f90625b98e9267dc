// Command greenlink-maint runs operator tasks against the Green-link
// database: schema setup, sample data, and data repair.
//
// Configuration comes from the environment and an optional .env file in
// the working directory. A missing GREENLINK_MONGO_URI or
// GREENLINK_MONGO_DATABASE exits with status 1; any other failure is
// logged and exits 0.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/greenlink/internal/app/maint"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const envFile = ".env"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger, closeLog := maint.NewLogger(stderr, "")
	defer func() { closeLog() }()

	var tool *maint.Tool
	root := newRootCmd(func(cmd *cobra.Command) (*maint.Tool, error) {
		cfg, err := maint.LoadConfig(envFile)
		if err != nil {
			return nil, err
		}
		if cfg.LogFile != "" {
			closeLog()
			logger, closeLog = maint.NewLogger(stderr, cfg.LogFile)
		}
		tool, err = maint.Open(cmd.Context(), cfg, logger, stdout)
		return tool, err
	})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if tool != nil {
		if cerr := tool.Close(context.Background()); cerr != nil {
			logger.Warn("disconnect failed", zap.Error(cerr))
		}
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, maint.ErrMissingConfig):
		logger.Error("configuration error", zap.Error(err))
		return 1
	default:
		logger.Error("command failed", zap.Error(err))
		return 0
	}
}

// opener connects to the database for a command.
type opener func(cmd *cobra.Command) (*maint.Tool, error)

type task struct {
	use   string
	short string
	run   func(t *maint.Tool, ctx context.Context) error
}

// ignoreResult adapts a task that returns a report; the report has
// already been printed.
func ignoreResult[R any](f func(*maint.Tool, context.Context) (R, error)) func(*maint.Tool, context.Context) error {
	return func(t *maint.Tool, ctx context.Context) error {
		_, err := f(t, ctx)
		return err
	}
}

func tasks() []task {
	return []task{
		{"setup", "Create collections, validators and indexes; print environment settings", (*maint.Tool).Setup},
		{"create-indexes", "Create or update every index", (*maint.Tool).CreateIndexes},
		{"seed", "Add an admin, four collectors and sixteen sample households", ignoreResult((*maint.Tool).Seed)},
		{"reset-and-seed", "Erase all data and seed twelve collectors with sixty households", ignoreResult((*maint.Tool).ResetAndSeed)},
		{"populate-logs", "Write sample routes and collection logs for the last three days", ignoreResult((*maint.Tool).PopulateLogs)},
		{"fix-assignments", "Assign each household to the first collector covering its ward", ignoreResult((*maint.Tool).FixAssignments)},
		{"sync-collector-counts", "Recompute each collector's total from the logs", ignoreResult((*maint.Tool).SyncCollectorCounts)},
		{"remove-duplicates", "Delete duplicate collectors, households, routes and logs", ignoreResult((*maint.Tool).RemoveDuplicates)},
		{"check-logs", "Print the log count and the latest three logs", (*maint.Tool).CheckLogs},
		{"debug-collections", "Print a count and a sample document per collection", (*maint.Tool).DebugCollections},
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "greenlink-maint",
		Short:         "Maintenance tasks for the Green-link database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, tk := range tasks() {
		root.AddCommand(&cobra.Command{
			Use:   tk.use,
			Short: tk.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				t, err := open(cmd)
				if err != nil {
					return err
				}
				return tk.run(t, cmd.Context())
			},
		})
	}
	return root
}
