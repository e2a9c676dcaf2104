package buildconfig

import (
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "x86_64-unknown-linux-gnu"

func newPatcher() *Patcher {
	logger, _ := logtest.NewNullLogger()
	return NewPatcher(logger)
}

func writeConfig(t *testing.T, backendDir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(backendDir, ".cargo"), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(backendDir), []byte(content), 0o644))
}

func TestPatchRestoreRoundTrip(t *testing.T) {
	contents := map[string]string{
		"cross target section": "[target.x86_64-unknown-linux-gnu]\nlinker = \"rust-lld\"\n",
		"lld linker only":      "[target.aarch64-unknown-linux-gnu]\nlinker = \"lld\"\n",
		"unrelated settings":   "[net]\ngit-fetch-with-cli = true\n",
		"empty file":           "",
	}
	for name, content := range contents {
		t.Run(name, func(t *testing.T) {
			backendDir := t.TempDir()
			writeConfig(t, backendDir, content)
			p := newPatcher()

			state, err := p.Patch(backendDir, target)
			require.NoError(t, err)
			require.NoError(t, p.Restore(state))

			restored, err := os.ReadFile(ConfigPath(backendDir))
			require.NoError(t, err)
			assert.Equal(t, content, string(restored))
			assert.NoFileExists(t, ConfigPath(backendDir)+backupSuffix)
		})
	}
}

func TestPatchWritesNativeConfig(t *testing.T) {
	backendDir := t.TempDir()
	writeConfig(t, backendDir, "[target.x86_64-unknown-linux-gnu]\nlinker = \"rust-lld\"\n")
	p := newPatcher()

	state, err := p.Patch(backendDir, target)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Applied)

	patched, err := os.ReadFile(ConfigPath(backendDir))
	require.NoError(t, err)
	assert.Contains(t, string(patched), `linker = "cc"`)
	assert.Contains(t, string(patched), `target = "x86_64-unknown-linux-gnu"`)
	assert.FileExists(t, state.BackupPath)
}

func TestPatchWithoutConfigIsNoop(t *testing.T) {
	backendDir := t.TempDir()
	p := newPatcher()

	state, err := p.Patch(backendDir, target)

	require.NoError(t, err)
	assert.Nil(t, state)
	assert.NoDirExists(t, filepath.Join(backendDir, ".cargo"))
	assert.NoError(t, p.Restore(state))
}

func TestPatchRefusesStaleBackup(t *testing.T) {
	backendDir := t.TempDir()
	writeConfig(t, backendDir, "linker = \"lld\"\n")
	require.NoError(t, os.WriteFile(ConfigPath(backendDir)+backupSuffix, []byte("old"), 0o644))

	state, err := newPatcher().Patch(backendDir, target)

	assert.Error(t, err)
	assert.Nil(t, state)
}

func TestRestoreToleratesMissingBackup(t *testing.T) {
	backendDir := t.TempDir()
	writeConfig(t, backendDir, "patched")
	state := &PatchState{
		ConfigPath: ConfigPath(backendDir),
		BackupPath: ConfigPath(backendDir) + backupSuffix,
		Applied:    true,
	}

	assert.NoError(t, newPatcher().Restore(state))
}
