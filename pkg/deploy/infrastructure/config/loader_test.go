package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	file, err := Load(filepath.Join(t.TempDir(), "deploy.yml"))
	require.NoError(t, err)
	assert.Equal(t, File{}, file)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	file, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, File{}, file)
}

func TestLoadReadsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yml")
	body := `app_name: shop
remote_root: /srv/shop
strict_binary_match: true
proxy_prefixes: [api, health]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	file, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", file.AppName)
	assert.Equal(t, "/srv/shop", file.RemoteRoot)
	assert.True(t, file.StrictBinaryMatch)
	assert.Equal(t, []string{"api", "health"}, file.ProxyPrefixes)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yml")
	require.NoError(t, os.WriteFile(path, []byte("app_nmae: shop\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNewDeploymentContextDefaults(t *testing.T) {
	deployment, err := NewDeploymentContext(Flags{
		IdentityFile: "key.pem",
		Host:         "ubuntu@203.0.113.7",
	}, File{}, "/work")
	require.NoError(t, err)

	assert.Equal(t, 3000, deployment.BackendPort)
	assert.Equal(t, "streetsource", deployment.AppName)
	assert.Equal(t, "/work", deployment.ProjectRoot)
	assert.Equal(t, "/opt/streetsource", deployment.RemoteRoot)
	assert.Equal(t, "x86_64-unknown-linux-gnu", deployment.Target)
	assert.Equal(t, "frontend", deployment.FrontendDir)
	assert.Equal(t, "backend", deployment.BackendDir)
	assert.Equal(t, "dist", deployment.FrontendOutput)
	assert.Equal(t, "info", deployment.BackendLogLevel)
	assert.Equal(t, []string{"api", "health", "ws"}, deployment.ProxyPrefixes)
	assert.False(t, deployment.StrictBinaryMatch)
}

func TestNewDeploymentContextFileOverrides(t *testing.T) {
	deployment, err := NewDeploymentContext(Flags{
		IdentityFile: "key.pem",
		Host:         "ubuntu@203.0.113.7",
		BackendPort:  8080,
	}, File{
		AppName:     "shop",
		ProjectRoot: "app",
	}, "/work")
	require.NoError(t, err)

	assert.Equal(t, 8080, deployment.BackendPort)
	assert.Equal(t, "/work/app", deployment.ProjectRoot)
	assert.Equal(t, "/opt/shop", deployment.RemoteRoot)
}

func TestNewDeploymentContextRejects(t *testing.T) {
	valid := Flags{IdentityFile: "key.pem", Host: "ubuntu@203.0.113.7"}
	for name, tc := range map[string]struct {
		flags Flags
		file  File
	}{
		"host without user":    {flags: Flags{IdentityFile: "key.pem", Host: "203.0.113.7"}},
		"host with empty user": {flags: Flags{IdentityFile: "key.pem", Host: "@203.0.113.7"}},
		"missing identity":     {flags: Flags{Host: "ubuntu@203.0.113.7"}},
		"port out of range":    {flags: Flags{IdentityFile: "key.pem", Host: "ubuntu@h", BackendPort: 70000}},
		"relative remote root": {flags: valid, file: File{RemoteRoot: "opt/app"}},
		"app name with slash":  {flags: valid, file: File{AppName: "a/b"}},
		"bad proxy prefix":     {flags: valid, file: File{ProxyPrefixes: []string{"api/v1"}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewDeploymentContext(tc.flags, tc.file, "/work")
			assert.Error(t, err)
		})
	}
}
