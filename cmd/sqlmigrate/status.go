package main

import (
	"context"
	"fmt"

	"github.com/jingkaihe/sqlmigrate/pkg/presenter"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database migration status",
	Long:  `Shows the application id and the applied and pending migrations of the database.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatus(cmd.Context())
	},
}

func runStatus(ctx context.Context) error {
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

	st, err := manager.Status(ctx)
	if err != nil {
		return err
	}

	presenter.Section("Database Migration Status")
	presenter.Info(fmt.Sprintf("Database: %s", path))
	if st.HasAppID {
		presenter.Info(fmt.Sprintf("Application: %s", st.AppID))
	} else {
		presenter.Info("Application: (unclaimed)")
	}
	if id := appID(m); id != "" && st.HasAppID && id != st.AppID {
		presenter.Warning(fmt.Sprintf("database belongs to %q, configured application is %q", st.AppID, id))
	}
	presenter.Separator()

	for i, d := range m.Descriptors() {
		presenter.Item(i < st.Version, fmt.Sprintf("%d - %s", i, d))
	}
	presenter.Separator()

	if st.TooNew() {
		presenter.Warning(fmt.Sprintf("database has %d migrations applied but the manifest only knows %d", st.Version, st.Known))
		return nil
	}
	presenter.Info(fmt.Sprintf("Applied: %d/%d migrations", st.Version, st.Known))
	return nil
}
