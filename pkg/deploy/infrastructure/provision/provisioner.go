package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
)

const proxyPackage = "nginx"

func NewProvisioner(logger logrus.FieldLogger, layout model.RemoteLayout, shell remote.Shell) *Provisioner {
	return &Provisioner{
		logger: logger,
		layout: layout,
		shell:  shell,
	}
}

// Provisioner prepares the remote host. Every step checks or overwrites, so
// running it again converges to the same state.
type Provisioner struct {
	logger logrus.FieldLogger
	layout model.RemoteLayout
	shell  remote.Shell
}

func (p *Provisioner) Provision(ctx context.Context) error {
	p.logger.Info("setting up remote environment...")
	dirs := []string{p.layout.AppRoot, p.layout.FrontendRoot, p.layout.BackendRoot}
	quoted := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		quoted = append(quoted, remote.Quote(dir))
	}

	steps := []struct {
		description string
		script      string
	}{
		{"refresh package index", "sudo apt-get update"},
		{"create application directories", "sudo mkdir -p " + strings.Join(quoted, " ")},
		{"set application ownership", "sudo chown -R $(whoami):$(whoami) " + remote.Quote(p.layout.AppRoot)},
	}
	for _, step := range steps {
		if err := p.run(ctx, step.description, step.script); err != nil {
			return err
		}
	}

	if err := p.ensureProxyInstalled(ctx); err != nil {
		return err
	}
	for _, action := range []string{"enable", "start"} {
		err := p.run(ctx, action+" "+proxyPackage, fmt.Sprintf("sudo systemctl %v %v", action, proxyPackage))
		if err != nil {
			return err
		}
	}
	p.logger.Info("remote environment setup completed")
	return nil
}

func (p *Provisioner) ensureProxyInstalled(ctx context.Context) error {
	if _, err := p.shell.Run(ctx, "command -v "+proxyPackage); err == nil {
		p.logger.Debug(fmt.Sprintf("%v already installed", proxyPackage))
		return nil
	}
	p.logger.Info(fmt.Sprintf("installing %v...", proxyPackage))
	return p.run(ctx, "install "+proxyPackage, "sudo apt-get install -y "+proxyPackage)
}

func (p *Provisioner) run(ctx context.Context, description, script string) error {
	if _, err := p.shell.Run(ctx, script); err != nil {
		return model.WrapError(err, "remote provisioning failed to "+description)
	}
	return nil
}
