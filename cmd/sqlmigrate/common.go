package main

import (
	"context"
	"strings"

	"github.com/jingkaihe/sqlmigrate/pkg/db"
	"github.com/jingkaihe/sqlmigrate/pkg/manifest"
	"github.com/jingkaihe/sqlmigrate/pkg/migrate"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

func loadManifest() (*manifest.Manifest, error) {
	path := viper.GetString("manifest")
	if path == "" {
		return nil, errors.New("no manifest configured")
	}
	if strings.ContainsAny(path, "*?[{") {
		return manifest.LoadGlob(path)
	}
	return manifest.Load(path)
}

func databasePath() (string, error) {
	if path := viper.GetString("database"); path != "" {
		return path, nil
	}
	return db.DefaultDBPath()
}

func openDatabase(ctx context.Context) (*sqlx.DB, string, error) {
	path, err := databasePath()
	if err != nil {
		return nil, "", err
	}
	conn, err := db.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return conn, path, nil
}

// appID returns the configured application id, preferring the flag or
// environment over the manifest.
func appID(m *manifest.Manifest) string {
	if id := viper.GetString("app_id"); id != "" {
		return id
	}
	return m.AppID
}

func newManager(conn *sqlx.DB, m *manifest.Manifest) (*migrate.Manager, error) {
	registry, err := m.Registry()
	if err != nil {
		return nil, errors.Wrap(err, "invalid manifest")
	}

	var opts []migrate.Option
	if id := appID(m); id != "" {
		opts = append(opts, migrate.WithAppID(id))
	}
	return migrate.NewManager(conn, registry, m.Descriptors(), opts...), nil
}
