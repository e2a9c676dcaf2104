package dependency

import (
	"context"
	"errors"
	"os/exec"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/application/service"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/buildconfig"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/builder"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/environment"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/health"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/nginx"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/profile"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/provision"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/systemd"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/transport"
)

var dependencyContainer = struct{}{}

type Container interface {
	Deployer() service.Deployer
	Profile() model.ProfileKind
}

func NewDependencyContainer(
	logger logrus.FieldLogger,
	deployment model.DeploymentContext,
	kind model.ProfileKind,
	healthOptions health.Options,
) Container {
	runID := uuid.NewString()
	logger = logger.WithField("run", runID)
	strategy := profile.ForKind(kind)
	runner := command.NewCommandRunner(logger)
	sshExecutable, _ := profile.ResolveTool(strategy, exec.LookPath, "ssh")
	scpExecutable, _ := profile.ResolveTool(strategy, exec.LookPath, "scp")
	shell := remote.NewSSHShell(deployment.IdentityFile, deployment.Host, runner).
		WithExecutables(sshExecutable, scpExecutable)
	layout := deployment.Layout()

	deployer := service.NewDeployerService(deployment, runID, logger, service.Stages{
		Validator:   environment.NewValidator(logger, deployment, strategy, runner, shell),
		Builder:     builder.NewArtifactBuilder(logger, deployment, strategy, runner, buildconfig.NewPatcher(logger)),
		Provisioner: provision.NewProvisioner(logger, layout, shell),
		Transporter: transport.NewTransporter(logger, deployment, shell),
		Units:       systemd.NewUnitInstaller(logger, layout, shell),
		Proxy:       nginx.NewConfigurer(logger, layout, shell),
		Lifecycle:   systemd.NewLifecycle(logger, layout, shell),
		Health:      health.NewChecker(logger, healthOptions),
	})

	return &container{
		deployer: deployer,
		kind:     kind,
	}
}

type container struct {
	deployer service.Deployer
	kind     model.ProfileKind
}

func (c *container) Deployer() service.Deployer {
	return c.deployer
}

func (c *container) Profile() model.ProfileKind {
	return c.kind
}

func ContainerFromContext(ctx context.Context) (Container, error) {
	v := ctx.Value(dependencyContainer)
	if c, ok := v.(Container); ok {
		return c, nil
	}
	return nil, errors.New("dependency container not found")
}

func ContainerToContext(ctx context.Context, c Container) context.Context {
	return context.WithValue(ctx, dependencyContainer, c)
}
