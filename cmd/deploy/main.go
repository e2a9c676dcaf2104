package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/config"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/dependency"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/health"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/profile"
)

func main() {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	ctx = listenOSKillSignalsContext(ctx)
	mainLogger := newLogger()

	app := &cli.App{
		Name:  "deploy",
		Usage: "build the frontend and backend locally and ship them to a remote Linux host",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "identity-file",
				Aliases:  []string{"i"},
				Usage:    "SSH private key used for every remote operation",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "remote host as user@address",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "backend-port",
				Aliases: []string{"p"},
				Usage:   "port the backend listens on",
				Value:   model.DefaultBackendPort,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML file with project settings",
				Value:   "deploy.yml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every command line",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, err := containerContext(c, mainLogger, health.Options{})
			if err != nil {
				return err
			}
			return deploy(ctx)
		},
		Commands: cli.Commands{
			&cli.Command{
				Name:  "status",
				Usage: "show the backend unit state and its latest logs",
				Action: func(c *cli.Context) error {
					ctx, err := containerContext(c, mainLogger, health.Options{})
					if err != nil {
						return err
					}
					return status(ctx)
				},
			},
			&cli.Command{
				Name:  "verify",
				Usage: "probe the health endpoint through the reverse proxy",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "base URL, defaults to http://<address>",
					},
					&cli.IntFlag{
						Name:  "attempts",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "interval",
						Value: 2 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Value: 10 * time.Second,
					},
				},
				Action: func(c *cli.Context) error {
					ctx, err := containerContext(c, mainLogger, health.Options{
						Timeout:  c.Duration("timeout"),
						Attempts: c.Int("attempts"),
						Interval: c.Duration("interval"),
					})
					if err != nil {
						return err
					}
					return verify(ctx, c.String("url"))
				},
			},
		},
	}
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		mainLogger.WithError(err).Error("failed execute command " + strings.Join(os.Args, " "))
		var deployErr *model.Error
		if errors.As(err, &deployErr) && len(deployErr.Remediation) > 0 {
			fmt.Fprintln(os.Stderr, "\nTo fix:")
			fmt.Fprintln(os.Stderr, deployErr.Hint())
		}
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	colors := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
		ForceColors:     colors,
		DisableColors:   !colors,
	})
	return logger
}

func containerContext(c *cli.Context, logger *logrus.Logger, healthOptions health.Options) (context.Context, error) {
	if c.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	file, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	deployment, err := config.NewDeploymentContext(config.Flags{
		IdentityFile: c.String("identity-file"),
		Host:         c.String("host"),
		BackendPort:  c.Int("backend-port"),
	}, file, workDir)
	if err != nil {
		return nil, err
	}
	kind := profile.Detect()
	logger.Debug(fmt.Sprintf("detected %v build profile", kind))
	container := dependency.NewDependencyContainer(logger, deployment, kind, healthOptions)
	return dependency.ContainerToContext(c.Context, container), nil
}

func listenOSKillSignalsContext(ctx context.Context) context.Context {
	var cancelFunc context.CancelFunc
	ctx, cancelFunc = context.WithCancel(ctx)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-ch:
			cancelFunc()
		case <-ctx.Done():
			return
		}
	}()
	return ctx
}
