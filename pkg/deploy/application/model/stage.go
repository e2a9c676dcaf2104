package model

import "time"

type Stage int

const (
	StageValidating Stage = iota
	StageFrontendBuilt
	StageBackendBuilt
	StageRemoteProvisioned
	StageFrontendDeployed
	StageBackendDeployed
	StageUnitInstalled
	StageProxyConfigured
	StageServicesStarted
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageValidating:        "Validating",
	StageFrontendBuilt:     "FrontendBuilt",
	StageBackendBuilt:      "BackendBuilt",
	StageRemoteProvisioned: "RemoteProvisioned",
	StageFrontendDeployed:  "FrontendDeployed",
	StageBackendDeployed:   "BackendDeployed",
	StageUnitInstalled:     "UnitInstalled",
	StageProxyConfigured:   "ProxyConfigured",
	StageServicesStarted:   "ServicesStarted",
	StageDone:              "Done",
	StageFailed:            "Failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Report describes a finished pipeline run.
type Report struct {
	RunID string
	Stage Stage
	// LastReached is the state the pipeline was in when it failed.
	LastReached Stage
	Artifact    BuildArtifact
	Duration    time.Duration
}
