//go:build wireinject
// +build wireinject

package di

import (
	"ArenaPull/pkg/config"
	"ArenaPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Clients
		ProvideArenaClient,
		ProvideForecasters,

		// Infrastructure
		ProvideLimiter,
		ProvidePool,
		ProvideJournal,
		ProvideContextCache,

		// Use cases
		ProvideRegistry,
		ProvideRequester,
		ProvideFormatter,
		ProvidePoller,
		ProvideRegistrar,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
