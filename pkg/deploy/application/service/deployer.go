package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

type DependencyValidator interface {
	Validate(ctx context.Context) error
}

type ArtifactBuilder interface {
	BuildFrontend(ctx context.Context) (model.FrontendBundle, error)
	// BuildBackend restores any local build configuration change before returning.
	BuildBackend(ctx context.Context) (model.BuildArtifact, error)
}

type RemoteProvisioner interface {
	Provision(ctx context.Context) error
}

type Transporter interface {
	DeployFrontend(ctx context.Context, bundle model.FrontendBundle) error
	DeployBackend(ctx context.Context, artifact model.BuildArtifact) (model.DeployedBackend, error)
}

type UnitInstaller interface {
	Install(ctx context.Context, spec model.ServiceUnitSpec) error
}

type ProxyConfigurer interface {
	Configure(ctx context.Context, spec model.ProxyConfigSpec) error
}

type ServiceLifecycle interface {
	Restart(ctx context.Context) error
	Report(ctx context.Context)
}

type HealthChecker interface {
	Check(ctx context.Context, baseURL string) (model.HealthReport, error)
}

type Deployer interface {
	Deploy(ctx context.Context) (model.Report, error)
	Status(ctx context.Context)
	Verify(ctx context.Context, baseURL string) (model.HealthReport, error)
}

type Stages struct {
	Validator   DependencyValidator
	Builder     ArtifactBuilder
	Provisioner RemoteProvisioner
	Transporter Transporter
	Units       UnitInstaller
	Proxy       ProxyConfigurer
	Lifecycle   ServiceLifecycle
	Health      HealthChecker
}

// NewDeployerService expects logger to carry the run field already, shared
// with the stages.
func NewDeployerService(
	deployment model.DeploymentContext,
	runID string,
	logger logrus.FieldLogger,
	stages Stages,
) Deployer {
	return &deployer{
		deployment: deployment,
		runID:      runID,
		logger:     logger,
		stages:     stages,
	}
}

type deployer struct {
	deployment model.DeploymentContext
	runID      string

	logger logrus.FieldLogger
	stages Stages
}

type step struct {
	// reached is the state entered when run succeeds.
	reached model.Stage
	run     func(ctx context.Context) error
}

// Deploy runs every stage in order and stops at the first failure. Remote
// changes made before a failure stay in place; running again converges.
func (service deployer) Deploy(ctx context.Context) (model.Report, error) {
	report := model.Report{RunID: service.runID, Stage: model.StageValidating}
	logger := service.logger
	start := time.Now()

	var (
		bundle   model.FrontendBundle
		artifact model.BuildArtifact
		backend  model.DeployedBackend
	)
	steps := []step{
		{model.StageFrontendBuilt, func(ctx context.Context) (err error) {
			bundle, err = service.stages.Builder.BuildFrontend(ctx)
			return err
		}},
		{model.StageBackendBuilt, func(ctx context.Context) (err error) {
			artifact, err = service.stages.Builder.BuildBackend(ctx)
			return err
		}},
		{model.StageRemoteProvisioned, service.stages.Provisioner.Provision},
		{model.StageFrontendDeployed, func(ctx context.Context) error {
			return service.stages.Transporter.DeployFrontend(ctx, bundle)
		}},
		{model.StageBackendDeployed, func(ctx context.Context) (err error) {
			backend, err = service.stages.Transporter.DeployBackend(ctx, artifact)
			return err
		}},
		{model.StageUnitInstalled, func(ctx context.Context) error {
			return service.stages.Units.Install(ctx, model.NewServiceUnitSpec(service.deployment, backend))
		}},
		{model.StageProxyConfigured, func(ctx context.Context) error {
			return service.stages.Proxy.Configure(ctx, model.NewProxyConfigSpec(service.deployment))
		}},
		{model.StageServicesStarted, service.stages.Lifecycle.Restart},
	}

	logger.Info(fmt.Sprintf("starting %v deployment to %v", service.deployment.AppName, service.deployment.Host))
	if err := service.stages.Validator.Validate(ctx); err != nil {
		return service.fail(logger, report, start, err)
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return service.fail(logger, report, start, model.WrapError(err, "deployment cancelled"))
		}
		if err := s.run(ctx); err != nil {
			return service.fail(logger, report, start, err)
		}
		report.Stage = s.reached
		logger.Debug(fmt.Sprintf("entered %v", report.Stage))
	}

	report.Stage = model.StageDone
	report.Artifact = artifact
	report.Duration = time.Since(start)
	service.summarize(logger, report)
	return report, nil
}

func (service deployer) Status(ctx context.Context) {
	service.stages.Lifecycle.Report(ctx)
}

func (service deployer) Verify(ctx context.Context, baseURL string) (model.HealthReport, error) {
	if baseURL == "" {
		baseURL = "http://" + service.deployment.Address()
	}
	return service.stages.Health.Check(ctx, baseURL)
}

func (service deployer) fail(
	logger logrus.FieldLogger,
	report model.Report,
	start time.Time,
	err error,
) (model.Report, error) {
	report.LastReached = report.Stage
	report.Stage = model.StageFailed
	report.Duration = time.Since(start)
	logger.WithField("stage", report.LastReached).Error(fmt.Sprintf("deployment failed: %v", err))
	return report, err
}

func (service deployer) summarize(logger logrus.FieldLogger, report model.Report) {
	unit := service.deployment.UnitName()
	logger.Info(fmt.Sprintf("deployment completed in %v", report.Duration.Round(time.Millisecond)))
	logger.Info(fmt.Sprintf("application should now be accessible at http://%v", service.deployment.Address()))
	logger.Info("service management commands:")
	logger.Info("  sudo systemctl status " + unit)
	logger.Info("  sudo journalctl -u " + unit + " -f")
}
