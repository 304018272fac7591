package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEnvSources points the resolution at exe, a bundled file and a fake
// process environment.
func stubEnvSources(t *testing.T, exe, bundled string, process map[string]string) {
	t.Helper()
	origExe, origWd, origLookup, origBundled := executable, getwd, lookupEnv, bundledEnv
	t.Cleanup(func() { executable, getwd, lookupEnv, bundledEnv = origExe, origWd, origLookup, origBundled })

	executable = func() (string, error) { return exe, nil }
	getwd = func() (string, error) { return "", errors.New("no cwd") }
	lookupEnv = func(k string) (string, bool) {
		v, ok := process[k]
		return v, ok
	}
	bundledEnv = bundled
}

func TestResolveEnv_FirstSourceWins(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "worklog")
	process := map[string]string{EnvBackend: "remote", EnvEndpoint: "process:1"}

	t.Run("process only", func(t *testing.T) {
		stubEnvSources(t, exe, "# nothing here\n", process)

		vals, source := resolveEnv()
		assert.Equal(t, SourceProcess, source)
		assert.Empty(t, cmp.Diff(process, vals))
	})

	t.Run("bundled beats process and is not merged", func(t *testing.T) {
		stubEnvSources(t, exe, "WORKLOG_TIMEZONE=UTC\nOTHER=x\n", process)

		vals, source := resolveEnv()
		assert.Equal(t, SourceBundled, source)
		assert.Empty(t, cmp.Diff(map[string]string{EnvTimezone: "UTC"}, vals))
	})

	t.Run("dotenv beside executable beats bundled", func(t *testing.T) {
		stubEnvSources(t, exe, "WORKLOG_TIMEZONE=UTC\n", process)
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("# local\nWORKLOG_DB_PATH=/tmp/w.db\n"), 0o600))
		t.Cleanup(func() { _ = os.Remove(path) })

		vals, source := resolveEnv()
		assert.Equal(t, SourceDotEnv+":"+path, source)
		assert.Empty(t, cmp.Diff(map[string]string{EnvDBPath: "/tmp/w.db"}, vals))
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		stubEnvSources(t, exe, "", nil)

		vals, source := resolveEnv()
		assert.Equal(t, SourceNone, source)
		assert.Empty(t, vals)
	})
}

func TestDotEnvPath_GoRunUsesWorkingDir(t *testing.T) {
	stubEnvSources(t, "/tmp/go-build1234/b001/exe/worklog", "", nil)
	getwd = func() (string, error) { return "/home/ana/src/worklog", nil }

	assert.Equal(t, filepath.Join("/home/ana/src/worklog", ".env"), dotEnvPath())
}

func TestParseEnv_SkipsBlankValues(t *testing.T) {
	stubEnvSources(t, filepath.Join(t.TempDir(), "worklog"), "", map[string]string{
		EnvBackend:   "remote",
		EnvAccessKey: "  ",
	})

	cfg := &Config{Backend: BackendLocal, AccessKey: "keep"}
	parseEnv(cfg)

	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, "keep", cfg.AccessKey)
	assert.Equal(t, SourceProcess, cfg.EnvSource)
}
