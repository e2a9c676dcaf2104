package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testDeployment() DeploymentContext {
	return DeploymentContext{
		IdentityFile:    "key.pem",
		Host:            "ubuntu@203.0.113.7",
		BackendPort:     3000,
		AppName:         "shop",
		ProjectRoot:     "/work",
		FrontendDir:     "frontend",
		BackendDir:      "backend",
		FrontendOutput:  "dist",
		RemoteRoot:      "/opt/shop",
		Target:          "x86_64-unknown-linux-gnu",
		BackendLogLevel: "info",
		ProxyPrefixes:   []string{"api", "health", "ws"},
	}
}

func TestDeploymentContextHost(t *testing.T) {
	c := testDeployment()
	assert.Equal(t, "ubuntu", c.User())
	assert.Equal(t, "203.0.113.7", c.Address())

	c.Host = "203.0.113.7"
	assert.Equal(t, "", c.User())
	assert.Equal(t, "203.0.113.7", c.Address())
}

func TestDeploymentContextLocalPaths(t *testing.T) {
	c := testDeployment()
	assert.Equal(t, "/work/frontend/dist", c.FrontendOutputDir())
	assert.Equal(t, "/work/backend/target/x86_64-unknown-linux-gnu/release", c.ReleaseDir())
}

func TestLayout(t *testing.T) {
	layout := testDeployment().Layout()
	assert.Equal(t, RemoteLayout{
		AppRoot:            "/opt/shop",
		FrontendRoot:       "/opt/shop/frontend",
		BackendRoot:        "/opt/shop/backend",
		UnitName:           "shop-backend.service",
		UnitPath:           "/etc/systemd/system/shop-backend.service",
		ProxyAvailablePath: "/etc/nginx/sites-available/shop.conf",
		ProxyEnabledDir:    "/etc/nginx/sites-enabled",
	}, layout)
	assert.Equal(t, "/etc/nginx/sites-enabled/shop.conf", layout.ProxyEnabledPath())
}

func TestNewServiceUnitSpec(t *testing.T) {
	spec := NewServiceUnitSpec(testDeployment(), DeployedBackend{ExecPath: "/opt/shop/backend/shop"})
	assert.Equal(t, "ubuntu", spec.User)
	assert.Equal(t, "/opt/shop/backend", spec.WorkingDirectory)
	assert.Equal(t, "/opt/shop/backend/shop", spec.ExecPath)
	assert.Equal(t, 3000, spec.Port)
	assert.Equal(t, "info", spec.LogLevel)
	assert.Equal(t, time.Second, spec.RestartInterval)
}

func TestNewProxyConfigSpec(t *testing.T) {
	spec := NewProxyConfigSpec(testDeployment())
	assert.Equal(t, "_", spec.ServerName)
	assert.Equal(t, "/opt/shop/frontend", spec.FrontendRoot)
	assert.Equal(t, 3000, spec.BackendPort)
	assert.Equal(t, []string{"api", "health", "ws"}, spec.ProxyPrefixes)
	assert.Equal(t, 60*time.Second, spec.Timeout)
}

func TestErrorHint(t *testing.T) {
	cause := errors.New("exit status 1")
	err := WrapError(cause, "backend build failed", "Run cargo build", "Check the linker")

	assert.Equal(t, "backend build failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "1. Run cargo build\n2. Check the linker", err.Hint())
	assert.Equal(t, "", NewError("no remediation").Hint())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "Validating", StageValidating.String())
	assert.Equal(t, "ProxyConfigured", StageProxyConfigured.String())
	assert.Equal(t, "Failed", StageFailed.String())
	assert.Equal(t, "Unknown", Stage(99).String())
	assert.Equal(t, "windows-cross", WindowsCross.String())
	assert.False(t, WindowsCross.BuildsNatively())
	assert.True(t, PosixCompat.BuildsNatively())
}
