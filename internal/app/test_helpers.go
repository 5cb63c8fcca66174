package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates an App for tests with debug logging captured in a
// SafeBuffer. Unset config fields take their defaults. Set
// GRIDWALK_TEST_LOGS=true to print the captured logs.
func SetupAppTest(t *testing.T, cfg Config, modules ...handlers.Module) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	def := DefaultConfig()
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.ManifestFormat == "" {
		cfg.ManifestFormat = def.ManifestFormat
	}
	cfg.LogLevel = "debug"

	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	testApp, err := NewApp(out, logBuffer, validated, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("GRIDWALK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
