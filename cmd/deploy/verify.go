package main

import (
	stdcontext "context"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/dependency"
)

func verify(ctx stdcontext.Context, baseURL string) error {
	dependencyContainer, err := dependency.ContainerFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = dependencyContainer.Deployer().Verify(ctx, baseURL)
	return err
}
