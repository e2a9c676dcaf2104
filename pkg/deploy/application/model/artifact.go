package model

import "path/filepath"

type FrontendBundle struct {
	OutputDir string
}

// BuildArtifact is the resolved backend executable.
type BuildArtifact struct {
	Path string
	// Candidates lists every file considered during resolution, in stable order.
	Candidates []string
	// Heuristic is set when no candidate matched the expected name.
	Heuristic bool
}

func (a BuildArtifact) Name() string {
	return filepath.Base(a.Path)
}

type DeployedBackend struct {
	ExecPath string
}
