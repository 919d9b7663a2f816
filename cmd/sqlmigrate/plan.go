package main

import (
	"fmt"

	"github.com/jingkaihe/sqlmigrate/pkg/presenter"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the SQL each migration executes",
	Long:  `Validates the manifest and prints the statements of every migration without opening a database.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPlan()
	},
}

func runPlan() error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	plan, err := m.Plan()
	if err != nil {
		return err
	}

	for _, p := range plan {
		presenter.Section(fmt.Sprintf("%d - %s", p.Index, p.Name))
		for _, stmt := range p.Statements {
			presenter.Info(stmt)
		}
		presenter.Info("")
	}
	return nil
}
