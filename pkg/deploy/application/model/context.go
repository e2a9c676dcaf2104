package model

import (
	"path"
	"path/filepath"
	"strings"
)

const DefaultBackendPort = 3000

// DeploymentContext is the immutable per-run configuration shared by every stage.
type DeploymentContext struct {
	IdentityFile string `validate:"required"`
	Host         string `validate:"required,userhost"`
	BackendPort  int    `validate:"min=1,max=65535"`

	AppName        string `validate:"required,excludesall=/ "`
	ProjectRoot    string `validate:"required"`
	FrontendDir    string `validate:"required"`
	BackendDir     string `validate:"required"`
	FrontendOutput string `validate:"required"`
	RemoteRoot     string `validate:"required,startswith=/"`

	Target            string `validate:"required"`
	BackendLogLevel   string `validate:"required"`
	StrictBinaryMatch bool
	ProxyPrefixes     []string `validate:"required,min=1,dive,required,alphanum"`
}

// User returns the login part of Host, or an empty string when absent.
func (c DeploymentContext) User() string {
	user, _, found := strings.Cut(c.Host, "@")
	if !found {
		return ""
	}
	return user
}

// Address returns the host part of Host.
func (c DeploymentContext) Address() string {
	_, address, found := strings.Cut(c.Host, "@")
	if !found {
		return c.Host
	}
	return address
}

func (c DeploymentContext) LocalFrontendDir() string {
	return filepath.Join(c.ProjectRoot, c.FrontendDir)
}

func (c DeploymentContext) LocalBackendDir() string {
	return filepath.Join(c.ProjectRoot, c.BackendDir)
}

func (c DeploymentContext) FrontendOutputDir() string {
	return filepath.Join(c.LocalFrontendDir(), c.FrontendOutput)
}

// ReleaseDir is where the backend build tool leaves executables for Target.
func (c DeploymentContext) ReleaseDir() string {
	return filepath.Join(c.LocalBackendDir(), "target", c.Target, "release")
}

func (c DeploymentContext) UnitName() string {
	return c.AppName + "-backend.service"
}

func (c DeploymentContext) Layout() RemoteLayout {
	return RemoteLayout{
		AppRoot:            c.RemoteRoot,
		FrontendRoot:       path.Join(c.RemoteRoot, "frontend"),
		BackendRoot:        path.Join(c.RemoteRoot, "backend"),
		UnitName:           c.UnitName(),
		UnitPath:           path.Join("/etc/systemd/system", c.UnitName()),
		ProxyAvailablePath: path.Join("/etc/nginx/sites-available", c.AppName+".conf"),
		ProxyEnabledDir:    "/etc/nginx/sites-enabled",
	}
}

// RemoteLayout holds the remote paths derived from a DeploymentContext.
type RemoteLayout struct {
	AppRoot            string
	FrontendRoot       string
	BackendRoot        string
	UnitName           string
	UnitPath           string
	ProxyAvailablePath string
	ProxyEnabledDir    string
}

func (l RemoteLayout) ProxyEnabledPath() string {
	return path.Join(l.ProxyEnabledDir, path.Base(l.ProxyAvailablePath))
}
