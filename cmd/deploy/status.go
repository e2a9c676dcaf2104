package main

import (
	stdcontext "context"

	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/dependency"
)

func status(ctx stdcontext.Context) error {
	dependencyContainer, err := dependency.ContainerFromContext(ctx)
	if err != nil {
		return err
	}
	dependencyContainer.Deployer().Status(ctx)
	return nil
}
