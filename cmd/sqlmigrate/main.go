package main

import (
	"context"
	"os"
	"strings"

	"github.com/jingkaihe/sqlmigrate/pkg/logger"
	"github.com/jingkaihe/sqlmigrate/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Environment variables, e.g. SQLMIGRATE_APP_ID or SQLMIGRATE_TRACING_ENABLED
	viper.SetEnvPrefix("SQLMIGRATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("manifest", "migrations.yaml")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")
	viper.SetDefault("tracing.sampler", "always")
	viper.SetDefault("tracing.ratio", 1.0)

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.sqlmigrate")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "sqlmigrate",
	Short: "Apply ordered schema migrations to SQLite databases",
	Long: `sqlmigrate applies the migrations declared in a YAML manifest to a SQLite database,
exactly once each and in order, refusing databases that are newer than the manifest or
that belong to a different application.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetLogOutput(cmd.ErrOrStderr())
		return logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
	},
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.String("database", "", "Path to the SQLite database (default $HOME/.sqlmigrate/storage.db)")
	flags.String("manifest", "", "Manifest file or doublestar glob, e.g. 'migrations/**/*.yaml'")
	flags.String("app-id", "", "Application id guarding the database (overrides the manifest's app_id)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (fmt, json)")

	viper.BindPFlag("database", flags.Lookup("database"))
	viper.BindPFlag("manifest", flags.Lookup("manifest"))
	viper.BindPFlag("app_id", flags.Lookup("app-id"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)

	ctx := context.Background()
	shutdown, err := initTracing(ctx)
	if err != nil {
		presenter.Error(err, "failed to initialize tracing")
		os.Exit(1)
	}

	err = rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdown(ctx); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
	}
	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
