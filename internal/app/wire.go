//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/amaumene/zoetrope/internal/config"
)

// Initialize builds the application graph for cfg
func Initialize(cfg *config.Config) (*App, func(), error) {
	wire.Build(InfraSet, ServiceSet, ControllerSet)
	return nil, nil, nil
}
