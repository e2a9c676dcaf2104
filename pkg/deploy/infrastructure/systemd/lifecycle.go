package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
)

const journalLines = 10

func NewLifecycle(logger logrus.FieldLogger, layout model.RemoteLayout, shell remote.Shell) *Lifecycle {
	return &Lifecycle{
		logger: logger,
		unit:   remote.Quote(layout.UnitName),
		shell:  shell,
	}
}

type Lifecycle struct {
	logger logrus.FieldLogger
	unit   string
	shell  remote.Shell
}

// Restart replaces the running backend instance. Only a failed start is fatal.
func (l *Lifecycle) Restart(ctx context.Context) error {
	l.logger.Info("starting services...")
	if _, err := l.shell.Run(ctx, "sudo systemctl stop "+l.unit); err != nil {
		l.logger.Debug(fmt.Sprintf("stop %v: %v", l.unit, err))
	}
	if _, err := l.shell.Run(ctx, "sudo systemctl start "+l.unit); err != nil {
		return model.WrapError(err,
			"failed to start "+l.unit,
			"Inspect the unit with: sudo journalctl -u "+l.unit+" --no-pager -n 50",
		)
	}
	l.Report(ctx)
	return nil
}

// Report logs the unit status and recent journal lines, best effort.
func (l *Lifecycle) Report(ctx context.Context) {
	status, err := l.Status(ctx)
	if status.Active != "" {
		l.logger.Info(fmt.Sprintf("%v status: %v", l.unit, status.Active))
	}
	if len(status.Logs) > 0 {
		l.logger.Info("recent service logs:")
		for _, line := range status.Logs {
			l.logger.Info("  " + line)
		}
	}
	if err != nil {
		l.logger.Warn(fmt.Sprintf("could not get service status: %v", err))
	}
}

func (l *Lifecycle) Status(ctx context.Context) (model.ServiceStatus, error) {
	var status model.ServiceStatus
	// is-active exits non-zero for inactive units but still prints the state
	active, activeErr := l.shell.Run(ctx, "sudo systemctl is-active "+l.unit)
	status.Active = strings.TrimSpace(active)
	if status.Active == "" && activeErr != nil {
		activeErr = pkgerrors.Wrap(activeErr, "failed to query unit state")
	} else {
		activeErr = nil
	}

	logs, logsErr := l.shell.Run(ctx, fmt.Sprintf("sudo journalctl -u %v --no-pager -n %d", l.unit, journalLines))
	if logsErr != nil {
		logsErr = pkgerrors.Wrap(logsErr, "failed to read unit journal")
	} else {
		for _, line := range strings.Split(logs, "\n") {
			if strings.TrimSpace(line) != "" {
				status.Logs = append(status.Logs, line)
			}
		}
	}
	return status, errors.Join(activeErr, logsErr)
}
