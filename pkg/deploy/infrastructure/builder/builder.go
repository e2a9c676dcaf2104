package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/buildconfig"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/profile"
)

func NewArtifactBuilder(
	logger logrus.FieldLogger,
	deployment model.DeploymentContext,
	strategy profile.Strategy,
	runner command.Runner,
	patcher *buildconfig.Patcher,
) *ArtifactBuilder {
	return &ArtifactBuilder{
		logger:     logger,
		deployment: deployment,
		strategy:   strategy,
		runner:     runner,
		patcher:    patcher,
	}
}

type ArtifactBuilder struct {
	logger     logrus.FieldLogger
	deployment model.DeploymentContext
	strategy   profile.Strategy
	runner     command.Runner
	patcher    *buildconfig.Patcher
}

func (builder *ArtifactBuilder) BuildFrontend(ctx context.Context) (model.FrontendBundle, error) {
	defer builder.timed("build frontend")()

	dir := builder.deployment.LocalFrontendDir()
	for _, args := range [][]string{{"install"}, {"run", "build"}} {
		_, err := builder.runner.Execute(ctx, builder.strategy.Local(dir, "npm", args...))
		if err != nil {
			return model.FrontendBundle{}, model.WrapError(err, "frontend build failed")
		}
	}

	outputDir := builder.deployment.FrontendOutputDir()
	info, err := os.Stat(outputDir)
	if err != nil || !info.IsDir() {
		return model.FrontendBundle{}, model.NewError(
			fmt.Sprintf("frontend build produced no output: %v not found", outputDir),
		)
	}
	return model.FrontendBundle{OutputDir: outputDir}, nil
}

func (builder *ArtifactBuilder) BuildBackend(ctx context.Context) (model.BuildArtifact, error) {
	defer builder.timed(fmt.Sprintf("build backend (%v)", builder.strategy.Kind()))()

	err := builder.compile(ctx)
	if err != nil {
		return model.BuildArtifact{}, err
	}

	releaseDir := builder.deployment.ReleaseDir()
	artifact, err := ResolveExecutable(
		releaseDir,
		ExpectedNames(builder.deployment.LocalBackendDir()),
		builder.deployment.StrictBinaryMatch,
	)
	if err != nil {
		return artifact, err
	}
	if artifact.Heuristic {
		builder.logger.WithField("candidates", artifact.Candidates).Warn(
			fmt.Sprintf("multiple binaries found and none matches the project name, using %v", artifact.Name()),
		)
	}
	builder.logger.Info(fmt.Sprintf("backend executable: %v", artifact.Path))
	return artifact, nil
}

// compile runs the backend build. Any build config override is restored
// before compile returns, whatever the outcome.
func (builder *ArtifactBuilder) compile(ctx context.Context) (err error) {
	backendDir := builder.deployment.LocalBackendDir()
	if builder.strategy.PatchesBuildConfig() {
		var state *buildconfig.PatchState
		state, err = builder.patcher.Patch(backendDir, builder.deployment.Target)
		defer func() {
			if restoreErr := builder.patcher.Restore(state); restoreErr != nil {
				err = errors.Join(err, model.WrapError(restoreErr, "failed to restore build configuration"))
			}
		}()
		if err != nil {
			return model.WrapError(err, "failed to prepare native build configuration")
		}
	}

	_, err = builder.runner.Execute(ctx, builder.strategy.BackendBuild(backendDir, builder.deployment.Target))
	if err != nil {
		return model.WrapError(err, "backend build failed", builder.strategy.BuildFailureHints()...)
	}
	return nil
}

func (builder *ArtifactBuilder) timed(what string) func() {
	builder.logger.Info(fmt.Sprintf("start %v...", what))
	start := time.Now()
	return func() {
		builder.logger.Info(fmt.Sprintf("done in %v", time.Since(start).String()))
	}
}
