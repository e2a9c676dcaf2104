package main

import (
	stdcontext "context"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/dependency"
)

func deploy(ctx stdcontext.Context) error {
	dependencyContainer, err := dependency.ContainerFromContext(ctx)
	if err != nil {
		return err
	}
	_, err = dependencyContainer.Deployer().Deploy(ctx)
	return err
}
