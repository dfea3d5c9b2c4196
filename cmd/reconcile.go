package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crowdmarks/core/reconcile"
	"crowdmarks/feature/mapview"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileMode    string
	reconcileJournal bool
)

// reconcileCmd runs the map sync without the HTTP server.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run the map sync headless and print every mutation",
	Long: `Subscribes to the pin collection and applies every change to an in-memory
annotation collection, printing each committed mutation as a JSON line.

Examples:
  # Follow the live collection
  reconcile

  # Compare with the legacy coordinate matching
  reconcile --mode coordinate

  # Also persist anomalies to the configured database
  reconcile --journal`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileMode, "mode", "", "Match mode override (id, coordinate)")
	reconcileCmd.Flags().BoolVar(&reconcileJournal, "journal", false, "Persist anomalies to the database")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	if reconcileMode != "" {
		cfg.Map.MatchMode = reconcileMode
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, err := connectDocstore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer fs.Close()

	var journal *mapview.Journal
	if reconcileJournal {
		db := connectJournal(cfg, logg)
		if db == nil {
			return fmt.Errorf("--journal requires a reachable database")
		}
		journal = mapview.NewJournal(db, logg)
		if err := journal.Migrate(); err != nil {
			return err
		}
	}

	source := mapview.NewFirestoreSource(fs, cfg.Docstore.PinsCollection, logg)
	svc, err := mapview.NewService(source, cfg.Map, journal, logg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	svc.Observe(reconcile.ObserverFunc(func(m reconcile.Mutation) {
		if err := enc.Encode(m); err != nil {
			logg.Warn("Failed to print mutation", zap.Error(err))
		}
	}))

	err = svc.Start(ctx)

	stats := svc.Stats()
	logg.Info("Reconcile finished",
		zap.String("mode", stats.Mode),
		zap.Int("annotations", stats.Size),
		zap.Uint64("applied", stats.Applied),
		zap.Uint64("unmatched", stats.Unmatched),
		zap.Uint64("failures", stats.Failures),
	)
	return err
}
