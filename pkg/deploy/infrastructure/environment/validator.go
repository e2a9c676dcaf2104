package environment

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/profile"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
)

var nativeBuildPackages = []string{"build-essential", "pkg-config", "libssl-dev"}

// LookPath finds an executable on PATH.
type LookPath func(name string) (string, error)

func NewValidator(
	logger logrus.FieldLogger,
	deployment model.DeploymentContext,
	strategy profile.Strategy,
	runner command.Runner,
	shell remote.Shell,
) *Validator {
	return &Validator{
		logger:     logger,
		deployment: deployment,
		strategy:   strategy,
		runner:     runner,
		shell:      shell,
		lookPath:   exec.LookPath,
	}
}

// Validator checks local and remote prerequisites and stops at the first failure.
type Validator struct {
	logger     logrus.FieldLogger
	deployment model.DeploymentContext
	strategy   profile.Strategy
	runner     command.Runner
	shell      remote.Shell
	lookPath   LookPath
}

func (v *Validator) WithLookPath(lookPath LookPath) *Validator {
	v.lookPath = lookPath
	return v
}

func (v *Validator) Validate(ctx context.Context) error {
	v.logger.Info(fmt.Sprintf("validating local environment (%v profile)...", v.strategy.Kind()))
	checks := []func(ctx context.Context) error{
		v.checkProjectLayout,
		v.checkIdentityFile,
		v.checkBuildTools,
		v.checkTransferTools,
		v.checkContainerRuntime,
		v.checkNativeBuildPackages,
		v.checkRemotePrerequisites,
	}
	for _, check := range checks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	v.logger.Info("environment validation passed")
	return nil
}

func (v *Validator) checkProjectLayout(context.Context) error {
	dirs := []struct {
		name string
		path string
	}{
		{"frontend", v.deployment.LocalFrontendDir()},
		{"backend", v.deployment.LocalBackendDir()},
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir.path)
		if err != nil || !info.IsDir() {
			return model.NewError(fmt.Sprintf("%v directory not found: %v", dir.name, dir.path))
		}
	}
	return nil
}

func (v *Validator) checkIdentityFile(context.Context) error {
	info, err := os.Stat(v.deployment.IdentityFile)
	if err != nil || info.IsDir() {
		return model.NewError(fmt.Sprintf("identity file not found: %v", v.deployment.IdentityFile))
	}
	return nil
}

func (v *Validator) checkBuildTools(context.Context) error {
	for _, tool := range v.strategy.BuildTools() {
		if v.findTool(tool) {
			continue
		}
		if tool == "cross" {
			return model.NewError("cross tool not found", "Install it with: cargo install cross")
		}
		return model.NewError(fmt.Sprintf("required tool not found: %v", tool))
	}
	return nil
}

func (v *Validator) checkTransferTools(context.Context) error {
	for _, tool := range []string{"ssh", "scp"} {
		if !v.findTool(tool) {
			return model.NewError(
				fmt.Sprintf("SSH tool not found: %v", tool),
				"Install an OpenSSH client (on Windows: enable OpenSSH or install Git for Windows)",
			)
		}
	}
	return nil
}

func (v *Validator) checkContainerRuntime(ctx context.Context) error {
	if !v.strategy.NeedsContainerRuntime() {
		return nil
	}
	dockerInfo := v.strategy.Local("", "docker", "info")
	dockerInfo.Verbose = false
	_, err := v.runner.Execute(ctx, dockerInfo)
	if err != nil {
		return model.WrapError(err,
			"docker is not running, cross requires docker for cross-compilation",
			"Start Docker Desktop (or the docker daemon) and retry",
		)
	}
	return nil
}

func (v *Validator) checkNativeBuildPackages(ctx context.Context) error {
	if !v.strategy.Kind().BuildsNatively() {
		return nil
	}
	if _, err := v.lookPath("dpkg"); err != nil {
		v.logger.Debug("dpkg not available, skipping build package check")
		return nil
	}
	_, err := v.runner.Execute(ctx, command.Command{Executable: "dpkg", Args: []string{"-s", "build-essential"}})
	if err == nil {
		return nil
	}

	v.logger.Warn("build-essential not found, installing build dependencies...")
	install := []command.Command{
		{Executable: "sudo", Args: []string{"apt-get", "update"}, Verbose: true},
		{Executable: "sudo", Args: append([]string{"apt-get", "install", "-y"}, nativeBuildPackages...), Verbose: true},
	}
	for _, cmd := range install {
		if _, err = v.runner.Execute(ctx, cmd); err != nil {
			return model.WrapError(err,
				"missing build dependencies",
				"Run manually: sudo apt update && sudo apt install -y build-essential pkg-config libssl-dev",
			)
		}
	}
	v.logger.Info("build dependencies installed")
	return nil
}

func (v *Validator) checkRemotePrerequisites(ctx context.Context) error {
	_, err := v.shell.Run(ctx, "command -v systemctl && command -v apt-get")
	if err != nil {
		return model.WrapError(err,
			fmt.Sprintf("remote host %v is not reachable or lacks systemd and apt", v.deployment.Host),
			"Check the identity file and the user@address given with --host",
			"The target host must be a systemd based Debian/Ubuntu system",
		)
	}
	return nil
}

func (v *Validator) findTool(tool string) bool {
	executable, found := profile.ResolveTool(v.strategy, v.lookPath, tool)
	if found && executable != tool {
		v.logger.Debug(fmt.Sprintf("using %v", executable))
	}
	return found
}
