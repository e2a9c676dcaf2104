package systemd

import (
	"context"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/render"
)

func NewUnitInstaller(logger logrus.FieldLogger, layout model.RemoteLayout, shell remote.Shell) *UnitInstaller {
	return &UnitInstaller{
		logger: logger,
		layout: layout,
		shell:  shell,
	}
}

// UnitInstaller renders the backend unit and installs it over any previous one.
type UnitInstaller struct {
	logger logrus.FieldLogger
	layout model.RemoteLayout
	shell  remote.Shell
}

func (i *UnitInstaller) Install(ctx context.Context, spec model.ServiceUnitSpec) error {
	i.logger.Info(fmt.Sprintf("setting up systemd unit %v...", i.layout.UnitName))
	content, err := render.ServiceUnit(spec)
	if err != nil {
		return model.WrapError(err, "failed to render service unit")
	}

	staging := path.Join("/tmp", i.layout.UnitName)
	err = i.shell.WriteFile(ctx, content, staging)
	if err != nil {
		return model.WrapError(err, "failed to upload service unit")
	}
	scripts := []string{
		fmt.Sprintf("sudo mv %v %v", remote.Quote(staging), remote.Quote(i.layout.UnitPath)),
		"sudo systemctl daemon-reload",
		"sudo systemctl enable " + remote.Quote(i.layout.UnitName),
	}
	for _, script := range scripts {
		if _, err = i.shell.Run(ctx, script); err != nil {
			return model.WrapError(err, "failed to install service unit")
		}
	}
	i.logger.Info("systemd unit installed")
	return nil
}
