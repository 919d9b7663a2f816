package presenter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name     string
		noColor  string
		envColor string
		expected ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"SQLMIGRATE_COLOR always", "", "always", ColorAlways},
		{"SQLMIGRATE_COLOR force", "", "force", ColorAlways},
		{"SQLMIGRATE_COLOR off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "rainbow", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SQLMIGRATE_COLOR", tt.envColor)
			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestTerminalPresenter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)

	p.Section("Database Migration Status")
	p.Item(true, "0 create_users")
	p.Item(false, "1 add_email_index")
	p.Success("applied 2 migrations")
	p.Warning("database is ahead")
	p.Error(errors.New("boom"), "apply")

	assert.Equal(t, "Database Migration Status\n=========================\n"+
		"[✓] 0 create_users\n[ ] 1 add_email_index\n"+
		"✓ applied 2 migrations\n⚠ database is ahead\n", out.String())
	assert.Equal(t, "[ERROR] apply: boom\n", errOut.String())
}

func TestTerminalPresenter_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Info("hidden")
	p.Item(true, "hidden")
	p.Separator()
	p.Error(errors.New("still shown"), "")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] still shown\n", errOut.String())
}
