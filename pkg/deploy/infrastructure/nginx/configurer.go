package nginx

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/remote"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/render"
)

const (
	defaultSite       = "default"
	defaultLinkSuffix = ".disabled-link"
)

func NewConfigurer(logger logrus.FieldLogger, layout model.RemoteLayout, shell remote.Shell) *Configurer {
	return &Configurer{
		logger: logger,
		layout: layout,
		shell:  shell,
	}
}

// Configurer installs the virtual host. A configuration that fails
// `nginx -t` is rolled back and never reaches the running proxy.
type Configurer struct {
	logger logrus.FieldLogger
	layout model.RemoteLayout
	shell  remote.Shell
}

func (c *Configurer) Configure(ctx context.Context, spec model.ProxyConfigSpec) error {
	c.logger.Info("configuring nginx...")
	content, err := render.ProxyConfig(spec)
	if err != nil {
		return model.WrapError(err, "failed to render nginx configuration")
	}

	available := remote.Quote(c.layout.ProxyAvailablePath)
	previous := remote.Quote(c.layout.ProxyAvailablePath + ".previous")
	enabled := remote.Quote(c.layout.ProxyEnabledPath())
	staging := path.Join("/tmp", path.Base(c.layout.ProxyAvailablePath))
	defaultEnabled := remote.Quote(path.Join(c.layout.ProxyEnabledDir, defaultSite))
	// kept outside sites-enabled so nginx does not load it
	defaultBackup := remote.Quote(path.Join(path.Dir(c.layout.ProxyAvailablePath), defaultSite+defaultLinkSuffix))

	err = c.shell.WriteFile(ctx, content, staging)
	if err != nil {
		return model.WrapError(err, "failed to upload nginx configuration")
	}
	install := []string{
		fmt.Sprintf("if [ -e %[1]v ]; then sudo mv %[1]v %[2]v; fi", defaultEnabled, defaultBackup),
		fmt.Sprintf("if [ -f %[1]v ]; then sudo cp %[1]v %[2]v; else sudo rm -f %[2]v; fi", available, previous),
		fmt.Sprintf("sudo mv %v %v", remote.Quote(staging), available),
		fmt.Sprintf("sudo ln -sf %v %v", available, enabled),
	}
	for _, script := range install {
		if _, err = c.shell.Run(ctx, script); err != nil {
			return model.WrapError(err, "failed to install nginx configuration")
		}
	}

	if _, err = c.shell.Run(ctx, "sudo nginx -t"); err != nil {
		rollback := []string{
			fmt.Sprintf("if [ -f %[2]v ]; then sudo mv %[2]v %[1]v; else sudo rm -f %[1]v %[3]v; fi", available, previous, enabled),
			fmt.Sprintf("if [ -e %[2]v ]; then sudo mv %[2]v %[1]v; fi", defaultEnabled, defaultBackup),
		}
		for _, script := range rollback {
			if _, rollbackErr := c.shell.Run(ctx, script); rollbackErr != nil {
				err = errors.Join(err, rollbackErr)
			}
		}
		return model.WrapError(err,
			"nginx configuration test failed, proxy was not reloaded",
			"Run: sudo nginx -t on the host to see the offending directive",
			"Check that no other enabled site conflicts with "+c.layout.ProxyAvailablePath,
		)
	}

	for _, script := range []string{"sudo rm -f " + previous + " " + defaultBackup, "sudo systemctl reload nginx"} {
		if _, err = c.shell.Run(ctx, script); err != nil {
			return model.WrapError(err, "failed to apply nginx configuration")
		}
	}
	c.logger.Info("nginx configuration completed")
	return nil
}
