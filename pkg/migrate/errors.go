package migrate

import "fmt"

// AppIDMismatchError is returned when the database was initialized by a
// different application.
type AppIDMismatchError struct {
	Expected string
	Actual   string
}

func (e *AppIDMismatchError) Error() string {
	return fmt.Sprintf("application id mismatch: database belongs to %q, expected %q", e.Actual, e.Expected)
}

// VersionTooHighError is returned when the database has more migrations
// applied than the application knows about. Actual is the number of applied
// migrations and Maximum the number of configured ones.
type VersionTooHighError struct {
	Actual  int
	Maximum int
}

func (e *VersionTooHighError) Error() string {
	return fmt.Sprintf("database version is %d, but max version supported by this application is %d", e.Actual, e.Maximum)
}

// ApplyError reports the migration that failed. Its transaction has been
// rolled back; earlier migrations stay committed.
type ApplyError struct {
	Index      int
	Descriptor Descriptor
	Err        error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply migration %d (%s): %v", e.Index, e.Descriptor, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Cause returns the underlying error for github.com/pkg/errors.Cause.
func (e *ApplyError) Cause() error { return e.Err }
