package migrate

import (
	"context"

	"github.com/jingkaihe/sqlmigrate/pkg/logger"
	"github.com/jingkaihe/sqlmigrate/pkg/telemetry"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Manager applies a fixed, ordered list of migrations to a database.
type Manager struct {
	db          *sqlx.DB
	factory     Factory
	descriptors []Descriptor

	appID    string
	hasAppID bool
	log      *logrus.Entry

	versions *VersionStore
	identity *IdentityGuard
}

// Option configures a Manager.
type Option func(*Manager)

// WithAppID enables the identity check. Without it, or with an empty id, the
// AppIds table is neither read nor written.
func WithAppID(appID string) Option {
	return func(m *Manager) {
		m.appID = appID
		m.hasAppID = appID != ""
	}
}

// WithLogger sets the logger used instead of the one carried by the context.
func WithLogger(log *logrus.Entry) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager returns a manager for the given migrations. The position of a
// descriptor in the list is its version, so the list must only ever grow at
// the end.
func NewManager(db *sqlx.DB, factory Factory, descriptors []Descriptor, opts ...Option) *Manager {
	m := &Manager{
		db:          db,
		factory:     factory,
		descriptors: append([]Descriptor(nil), descriptors...),
		versions:    NewVersionStore(db),
		identity:    NewIdentityGuard(db),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply runs every pending migration in order and returns the new version,
// which is the number of configured migrations. Each migration runs in its
// own transaction together with the insert of its version record; on failure
// that transaction is rolled back and no later migration is attempted.
func (m *Manager) Apply(ctx context.Context) (int, error) {
	var version int
	err := telemetry.WithSpan(ctx, "migrate.apply", func(ctx context.Context) error {
		var err error
		version, err = m.apply(ctx)
		return err
	}, attribute.Int("migrate.count", len(m.descriptors)))
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (m *Manager) apply(ctx context.Context) (int, error) {
	log := m.logger(ctx)

	if m.hasAppID {
		if err := m.identity.Check(ctx, m.appID); err != nil {
			return 0, err
		}
		log.WithField("app_id", m.appID).Debug("application id verified")
	}

	if err := m.versions.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	current, err := m.versions.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	total := len(m.descriptors)
	if current >= total {
		return 0, &VersionTooHighError{Actual: current + 1, Maximum: total}
	}

	telemetry.SetAttributes(ctx,
		attribute.Int("migrate.current", current+1),
		attribute.Int("migrate.target", total))
	log.WithFields(logrus.Fields{
		"current": current + 1,
		"target":  total,
	}).Debug("determined migration version")

	for i := current + 1; i < total; i++ {
		if err := m.applyOne(ctx, i); err != nil {
			log.WithError(err).WithField("index", i).Error("migration failed")
			return 0, err
		}
		log.WithFields(logrus.Fields{
			"index":     i,
			"migration": m.descriptors[i],
		}).Info("migration applied")
	}

	return total, nil
}

func (m *Manager) applyOne(ctx context.Context, index int) error {
	d := m.descriptors[index]
	fail := func(err error) error {
		return &ApplyError{Index: index, Descriptor: d, Err: err}
	}

	return telemetry.WithSpan(ctx, "migrate.migration", func(ctx context.Context) error {
		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return fail(errors.Wrap(err, "failed to begin transaction"))
		}
		defer tx.Rollback()

		migration, err := m.factory.Resolve(d)
		if err != nil {
			return fail(err)
		}

		if err := migration.Apply(ctx, tx); err != nil {
			return fail(err)
		}

		if err := m.versions.RecordApplied(ctx, tx, index); err != nil {
			return fail(err)
		}
		telemetry.AddEvent(ctx, "migrate.version_recorded", attribute.Int("migrate.index", index))

		if err := tx.Commit(); err != nil {
			return fail(errors.Wrap(err, "failed to commit transaction"))
		}
		return nil
	}, attribute.Int("migrate.index", index), attribute.String("migrate.descriptor", string(d)))
}

// Status describes the migration state of a database.
type Status struct {
	// AppID is the stored application id, empty when HasAppID is false.
	AppID    string
	HasAppID bool
	// Version is the number of applied migrations.
	Version int
	// Known is the number of configured migrations.
	Known   int
	Applied []int
	// Pending lists configured migrations not yet applied, in order.
	Pending []Descriptor
}

// TooNew reports whether the database is ahead of the configured migrations.
func (s Status) TooNew() bool {
	return s.Version > s.Known
}

// Status reports the migration state without applying anything. It creates
// the MigrationVersions table if it is missing.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	st := Status{Known: len(m.descriptors)}

	appID, found, err := m.identity.Current(ctx)
	if err != nil {
		return st, err
	}
	st.AppID, st.HasAppID = appID, found

	if err := m.versions.EnsureSchema(ctx); err != nil {
		return st, err
	}
	current, err := m.versions.CurrentVersion(ctx)
	if err != nil {
		return st, err
	}
	st.Applied, err = m.versions.Applied(ctx)
	if err != nil {
		return st, err
	}
	st.Version = current + 1

	if st.Version < st.Known {
		st.Pending = append([]Descriptor(nil), m.descriptors[st.Version:]...)
	}
	return st, nil
}

func (m *Manager) logger(ctx context.Context) *logrus.Entry {
	if m.log != nil {
		return m.log.WithContext(ctx)
	}
	return logger.G(ctx)
}
