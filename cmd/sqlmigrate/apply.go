package main

import (
	"context"
	"fmt"

	"github.com/jingkaihe/sqlmigrate/pkg/migrate"
	"github.com/jingkaihe/sqlmigrate/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply pending migrations",
	Long: `Applies every migration in the manifest that the database has not seen yet,
each in its own transaction. A failing migration is rolled back and stops the run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runApply(cmd.Context())
	},
}

func runApply(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	conn, path, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	manager, err := newManager(conn, m)
	if err != nil {
		return err
	}

	version, err := manager.Apply(ctx)
	if err != nil {
		return explainApplyError(err)
	}

	presenter.Success(fmt.Sprintf("%s is at version %d", path, version))
	return nil
}

func explainApplyError(err error) error {
	var mismatch *migrate.AppIDMismatchError
	var tooHigh *migrate.VersionTooHighError
	var failed *migrate.ApplyError

	switch {
	case errors.As(err, &mismatch):
		return errors.Wrap(err, "refusing to migrate a database owned by another application")
	case errors.As(err, &tooHigh):
		return errors.Wrap(err, "the database is newer than this manifest")
	case errors.As(err, &failed):
		return errors.Wrapf(err, "migrations before %d remain applied", failed.Index)
	default:
		return err
	}
}
