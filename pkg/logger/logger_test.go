package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := newLogger()

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to global logger", func(t *testing.T) {
		retrieved := G(context.Background())
		assert.Equal(t, L.Logger, retrieved.Logger)
	})

	t.Run("returns logger stored in context", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("migration", "create_users")
		ctx := WithLogger(context.Background(), custom)

		retrieved := G(ctx)
		assert.Equal(t, "create_users", retrieved.Data["migration"])
	})
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	setLoggerFormat(l, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(l))
	G(ctx).WithField("index", 3).Info("migration applied")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["logLevel"])
	assert.Equal(t, "migration applied", entry["message"])
	assert.Equal(t, float64(3), entry["index"])

	ts, ok := entry["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestConfigure(t *testing.T) {
	origLevel := L.Logger.GetLevel()
	origFormatter := L.Logger.Formatter
	defer func() {
		L.Logger.SetLevel(origLevel)
		L.Logger.Formatter = origFormatter
	}()

	require.NoError(t, Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)

	require.NoError(t, Configure("", ""))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	err := Configure("loud", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
