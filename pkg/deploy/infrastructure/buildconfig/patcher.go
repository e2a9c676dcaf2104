package buildconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const backupSuffix = ".backup"

// PatchState records an applied override. A nil state needs no restore.
type PatchState struct {
	ConfigPath string
	BackupPath string
	Applied    bool
}

func NewPatcher(logger logrus.FieldLogger) *Patcher {
	return &Patcher{logger: logger}
}

// Patcher neutralizes cross-compilation linker settings in the backend's
// cargo configuration for the duration of a native build.
type Patcher struct {
	logger logrus.FieldLogger
}

func ConfigPath(backendDir string) string {
	return filepath.Join(backendDir, ".cargo", "config.toml")
}

// Markers returns the config fragments that conflict with a native build for target.
func Markers(target string) []string {
	return []string{
		fmt.Sprintf("[target.%v]", target),
		`linker = "rust-lld"`,
		`linker = "lld"`,
	}
}

func NativeConfig(target string) string {
	return fmt.Sprintf(`# Native build configuration
# Temporarily replaces cross-compilation settings during deployment

[target.%[1]v]
linker = "cc"

[build]
target = "%[1]v"
`, target)
}

// Patch backs up a conflicting configuration and writes a native one in its
// place. The returned state is non-nil whenever a backup exists, including
// on error, so that Restore can always be deferred.
func (p *Patcher) Patch(backendDir, target string) (*PatchState, error) {
	configPath := ConfigPath(backendDir)
	content, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read %v", configPath)
	}
	if !needsOverride(string(content), target) {
		return nil, nil
	}

	p.logger.Info("found cross-compilation config that conflicts with native build, creating temporary override")
	state := &PatchState{
		ConfigPath: configPath,
		BackupPath: configPath + backupSuffix,
	}
	if _, err = os.Stat(state.BackupPath); err == nil {
		return nil, fmt.Errorf("stale backup %v exists, restore it before deploying", state.BackupPath)
	}
	err = os.Rename(configPath, state.BackupPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to back up %v", configPath)
	}
	state.Applied = true
	p.logger.Debug(fmt.Sprintf("backed up existing config to %v", state.BackupPath))

	err = os.WriteFile(configPath, []byte(NativeConfig(target)), 0o644)
	if err != nil {
		return state, errors.Wrapf(err, "failed to write native config %v", configPath)
	}
	return state, nil
}

// Restore puts the backed up configuration back. It is a no-op for a nil or
// unapplied state and tolerates an already missing backup.
func (p *Patcher) Restore(state *PatchState) error {
	if state == nil || !state.Applied {
		return nil
	}
	if _, err := os.Stat(state.BackupPath); os.IsNotExist(err) {
		p.logger.Warn(fmt.Sprintf("backup %v not found, nothing to restore", state.BackupPath))
		return nil
	}
	err := os.Remove(state.ConfigPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove override %v", state.ConfigPath)
	}
	err = os.Rename(state.BackupPath, state.ConfigPath)
	if err != nil {
		return errors.Wrapf(err, "failed to restore %v", state.ConfigPath)
	}
	p.logger.Info("restored original cargo configuration")
	return nil
}

func needsOverride(content, target string) bool {
	for _, marker := range Markers(target) {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
