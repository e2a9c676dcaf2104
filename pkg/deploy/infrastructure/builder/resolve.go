package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

// ignoredEntries are cargo bookkeeping entries of a release directory.
var ignoredEntries = map[string]struct{}{
	"deps":         {},
	"build":        {},
	"incremental":  {},
	"examples":     {},
	".fingerprint": {},
}

type cargoManifest struct {
	Package struct {
		Name       string `toml:"name"`
		DefaultRun string `toml:"default-run"`
	} `toml:"package"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
}

// ExpectedNames lists binary names to look for, most specific first: the
// manifest's default-run target, a sole [[bin]] target, the package name,
// then the directory name.
func ExpectedNames(backendDir string) []string {
	var names []string
	content, err := os.ReadFile(filepath.Join(backendDir, "Cargo.toml"))
	if err == nil {
		var manifest cargoManifest
		if toml.Unmarshal(content, &manifest) == nil {
			names = append(names, manifest.Package.DefaultRun)
			if len(manifest.Bin) == 1 {
				names = append(names, manifest.Bin[0].Name)
			}
			names = append(names, manifest.Package.Name)
		}
	}
	names = append(names, filepath.Base(backendDir))

	result := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// ResolveExecutable picks the backend executable out of releaseDir.
// Candidates are examined in lexical order, so an unmatched pick is stable.
func ResolveExecutable(releaseDir string, expectedNames []string, strict bool) (model.BuildArtifact, error) {
	entries, err := os.ReadDir(releaseDir)
	if err != nil {
		return model.BuildArtifact{}, model.WrapError(
			errors.Wrapf(err, "failed to read %v", releaseDir),
			"backend build failed: release directory not found",
		)
	}

	var candidates []string
	for _, entry := range entries {
		if isCandidate(entry) {
			candidates = append(candidates, entry.Name())
		}
	}
	artifact := model.BuildArtifact{Candidates: candidates}

	switch len(candidates) {
	case 0:
		return artifact, model.NewError(fmt.Sprintf(
			"backend build failed: no executable found in %v (contents: %v)", releaseDir, listing(entries),
		))
	case 1:
		artifact.Path = filepath.Join(releaseDir, candidates[0])
		return artifact, nil
	}

	for _, expected := range expectedNames {
		for _, name := range []string{expected, strings.ReplaceAll(expected, "-", "_")} {
			for _, candidate := range candidates {
				if candidate == name {
					artifact.Path = filepath.Join(releaseDir, candidate)
					return artifact, nil
				}
			}
		}
	}

	if strict {
		return artifact, model.NewError(
			fmt.Sprintf("multiple executables found (%v) and none matches %v", strings.Join(candidates, ", "), expectedNames),
			"Set package.default-run in Cargo.toml to the binary that should be deployed",
			"Or disable strict_binary_match to deploy the first candidate",
		)
	}
	artifact.Path = filepath.Join(releaseDir, candidates[0])
	artifact.Heuristic = true
	return artifact, nil
}

func isCandidate(entry os.DirEntry) bool {
	name := entry.Name()
	if entry.IsDir() || strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := ignoredEntries[name]; ok {
		return false
	}
	// .d dependency files, .rlib and friends
	return filepath.Ext(name) == ""
}

func listing(entries []os.DirEntry) string {
	if len(entries) == 0 {
		return "empty"
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
