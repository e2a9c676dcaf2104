package transport

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
)

// auxiliaryPatterns are optional backend files shipped next to the executable.
var auxiliaryPatterns = []string{"Cargo.toml", ".env.example", "config.*"}

const stagingSuffix = ".new"

func NewTransporter(
	logger logrus.FieldLogger,
	deployment model.DeploymentContext,
	shell remote.Shell,
) *Transporter {
	return &Transporter{
		logger:     logger,
		deployment: deployment,
		layout:     deployment.Layout(),
		shell:      shell,
	}
}

type Transporter struct {
	logger     logrus.FieldLogger
	deployment model.DeploymentContext
	layout     model.RemoteLayout
	shell      remote.Shell
}

// DeployFrontend copies every top-level entry of the bundle into the remote
// frontend root, so the bundle directory itself is not nested remotely.
func (t *Transporter) DeployFrontend(ctx context.Context, bundle model.FrontendBundle) error {
	t.logger.Info("deploying frontend...")
	entries, err := os.ReadDir(bundle.OutputDir)
	if err != nil {
		return model.WrapError(err, "failed to read frontend build output")
	}
	for _, entry := range entries {
		local := filepath.Join(bundle.OutputDir, entry.Name())
		err = t.shell.Copy(ctx, local, t.layout.FrontendRoot, entry.IsDir())
		if err != nil {
			return model.WrapError(err, "frontend transfer failed")
		}
	}
	t.logger.Info(fmt.Sprintf("frontend deployed: %v entries", len(entries)))
	return nil
}

func (t *Transporter) DeployBackend(ctx context.Context, artifact model.BuildArtifact) (model.DeployedBackend, error) {
	t.logger.Info("deploying backend...")
	execPath := path.Join(t.layout.BackendRoot, artifact.Name())
	// the running unit keeps execPath busy, so the new binary is renamed over it
	staging := execPath + stagingSuffix
	err := t.shell.Copy(ctx, artifact.Path, staging, false)
	if err != nil {
		return model.DeployedBackend{}, model.WrapError(err, "backend transfer failed")
	}
	_, err = t.shell.Run(ctx, "chmod +x "+remote.Quote(staging))
	if err != nil {
		return model.DeployedBackend{}, model.WrapError(err, "failed to mark backend executable")
	}
	_, err = t.shell.Run(ctx, fmt.Sprintf("mv -f %v %v", remote.Quote(staging), remote.Quote(execPath)))
	if err != nil {
		return model.DeployedBackend{}, model.WrapError(err, "failed to replace backend executable")
	}

	for _, file := range t.auxiliaryFiles() {
		err = t.shell.Copy(ctx, file, t.layout.BackendRoot+"/", false)
		if err != nil {
			return model.DeployedBackend{}, model.WrapError(err, "backend transfer failed")
		}
	}
	t.logger.Info(fmt.Sprintf("backend deployed to %v", execPath))
	return model.DeployedBackend{ExecPath: execPath}, nil
}

func (t *Transporter) auxiliaryFiles() []string {
	backendDir := t.deployment.LocalBackendDir()
	var files []string
	for _, pattern := range auxiliaryPatterns {
		matches, err := filepath.Glob(filepath.Join(backendDir, pattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if info, statErr := os.Stat(match); statErr == nil && info.Mode().IsRegular() {
				files = append(files, match)
			}
		}
	}
	return files
}
