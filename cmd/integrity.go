package cmd

import (
	"context"
	"errors"
	"fmt"

	"crowdmarks/core/storage"
	"crowdmarks/feature/integrity"
	"crowdmarks/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the deployment",
	Long:  `Checks that the storage bucket has the required folder structure and that the anomaly journal schema is complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix bucket structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// journalCmd represents the integrity journal command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Check and migrate the anomaly journal table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, journalCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing bucket and folders")
	journalCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate the journal table")
}

func runIntegrityChecks(ctx context.Context, runStructure, runJournal bool) error {
	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	var svc *integrity.Service
	if runJournal {
		svc = integrity.NewService(client, cfg.Storage, logg, connectJournal(cfg, logg))
	} else {
		svc = integrity.NewService(client, cfg.Storage, logg, nil)
	}
	onlyOne := runStructure != runJournal

	if runStructure {
		logg.Info("Checking bucket structure...", zap.String("bucket", cfg.Storage.Bucket))
		missing, err := svc.CheckStructure(ctx)
		switch {
		case errors.Is(err, checks.ErrBucketMissing) && onlyOne && fixFlag:
			missing = checks.RequiredFolders
		case err != nil:
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))

			if onlyOne && fixFlag {
				logg.Info("Fixing missing folders...")
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else if onlyOne {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runJournal {
		logg.Info("Checking anomaly journal schema...")
		report, err := svc.CheckJournal()
		switch {
		case errors.Is(err, checks.ErrNoDatabase):
			logg.Warn("Journal check skipped, no database connected")
			return nil
		case err != nil:
			return fmt.Errorf("journal check failed: %w", err)
		}

		if report.Healthy {
			logg.Info("Journal schema is complete.", zap.String("table", report.Table))
		} else {
			logg.Warn("Journal columns missing", zap.String("table", report.Table), zap.Strings("missing", report.Missing))

			if onlyOne && fixFlag {
				if err := svc.FixJournal(); err != nil {
					return fmt.Errorf("failed to migrate journal: %w", err)
				}
				logg.Info("Journal migrated successfully.")
			} else if onlyOne {
				logg.Info("Run with --fix to migrate the journal table.")
			}
		}
	}

	return nil
}
