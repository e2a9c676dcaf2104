package service

import (
	"context"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

var deployment = model.DeploymentContext{
	Host:            "ubuntu@10.0.0.1",
	BackendPort:     3000,
	AppName:         "shop",
	RemoteRoot:      "/opt/shop",
	BackendLogLevel: "info",
	ProxyPrefixes:   []string{"api", "health", "ws"},
}

// fakeStages implements every stage and records the order they ran in.
type fakeStages struct {
	calls    []string
	failOn   string
	restores int

	unitSpec  model.ServiceUnitSpec
	proxySpec model.ProxyConfigSpec
	health    string
}

func (f *fakeStages) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return model.NewError(name + " failed")
	}
	return nil
}

func (f *fakeStages) Validate(context.Context) error {
	return f.record("validate")
}

func (f *fakeStages) BuildFrontend(context.Context) (model.FrontendBundle, error) {
	return model.FrontendBundle{OutputDir: "/src/frontend/dist"}, f.record("frontend")
}

func (f *fakeStages) BuildBackend(context.Context) (model.BuildArtifact, error) {
	defer func() { f.restores++ }()
	return model.BuildArtifact{Path: "/src/backend/target/release/server"}, f.record("backend")
}

func (f *fakeStages) Provision(context.Context) error {
	return f.record("provision")
}

func (f *fakeStages) DeployFrontend(_ context.Context, bundle model.FrontendBundle) error {
	if bundle.OutputDir == "" {
		return errors.New("bundle not threaded through")
	}
	return f.record("deploy-frontend")
}

func (f *fakeStages) DeployBackend(_ context.Context, artifact model.BuildArtifact) (model.DeployedBackend, error) {
	return model.DeployedBackend{ExecPath: "/opt/shop/backend/" + artifact.Name()}, f.record("deploy-backend")
}

func (f *fakeStages) Install(_ context.Context, spec model.ServiceUnitSpec) error {
	f.unitSpec = spec
	return f.record("unit")
}

func (f *fakeStages) Configure(_ context.Context, spec model.ProxyConfigSpec) error {
	f.proxySpec = spec
	return f.record("proxy")
}

func (f *fakeStages) Restart(context.Context) error {
	return f.record("restart")
}

func (f *fakeStages) Report(context.Context) {
	f.calls = append(f.calls, "report")
}

func (f *fakeStages) Check(_ context.Context, baseURL string) (model.HealthReport, error) {
	f.health = baseURL
	return model.HealthReport{URL: baseURL + "/health", StatusCode: 200, Status: "healthy"}, nil
}

func newDeployer(f *fakeStages) Deployer {
	logger, _ := logtest.NewNullLogger()
	return NewDeployerService(deployment, "run-1", logger, Stages{
		Validator:   f,
		Builder:     f,
		Provisioner: f,
		Transporter: f,
		Units:       f,
		Proxy:       f,
		Lifecycle:   f,
		Health:      f,
	})
}

var pipeline = []string{
	"validate", "frontend", "backend", "provision", "deploy-frontend",
	"deploy-backend", "unit", "proxy", "restart",
}

func TestDeploySucceeds(t *testing.T) {
	f := &fakeStages{}

	report, err := newDeployer(f).Deploy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pipeline, f.calls)
	assert.Equal(t, model.StageDone, report.Stage)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "server", report.Artifact.Name())
	assert.Equal(t, 1, f.restores)
	assert.Equal(t, "/opt/shop/backend/server", f.unitSpec.ExecPath)
	assert.Equal(t, "/opt/shop/backend", f.unitSpec.WorkingDirectory)
	assert.Equal(t, 3000, f.proxySpec.BackendPort)
	assert.Equal(t, "/opt/shop/frontend", f.proxySpec.FrontendRoot)
}

func TestDeployFailsFast(t *testing.T) {
	reached := []model.Stage{
		model.StageValidating,
		model.StageValidating,
		model.StageFrontendBuilt,
		model.StageBackendBuilt,
		model.StageRemoteProvisioned,
		model.StageFrontendDeployed,
		model.StageBackendDeployed,
		model.StageUnitInstalled,
		model.StageProxyConfigured,
	}
	for k, failing := range pipeline {
		t.Run(failing, func(t *testing.T) {
			f := &fakeStages{failOn: failing}

			report, err := newDeployer(f).Deploy(context.Background())

			var deployErr *model.Error
			require.ErrorAs(t, err, &deployErr)
			assert.Equal(t, pipeline[:k+1], f.calls)
			assert.Equal(t, model.StageFailed, report.Stage)
			assert.Equal(t, reached[k], report.LastReached)
			if k >= 2 {
				assert.Equal(t, 1, f.restores)
			} else {
				assert.Zero(t, f.restores)
			}
		})
	}
}

func TestDeployCancelled(t *testing.T) {
	f := &fakeStages{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newDeployer(f).Deploy(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StageFailed, report.Stage)
	assert.Equal(t, []string{"validate"}, f.calls)
}

func TestVerifyDefaultsToHostAddress(t *testing.T) {
	f := &fakeStages{}

	report, err := newDeployer(f).Verify(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1", f.health)
	assert.Equal(t, "healthy", report.Status)
}

func TestStatusReports(t *testing.T) {
	f := &fakeStages{}

	newDeployer(f).Status(context.Background())

	assert.Equal(t, []string{"report"}, f.calls)
}
