//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/rain-nowcast/internal/bootstrap"
	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	"github.com/yanqian/rain-nowcast/internal/infra/config"
	"github.com/yanqian/rain-nowcast/internal/infra/nowcast/yahoo"
	httpiface "github.com/yanqian/rain-nowcast/internal/interface/http"
	"github.com/yanqian/rain-nowcast/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideNowcastConfig,
		provideYahooClient,
		provideNormalizer,
		provideCoordinateProvider,
		provideSnapshotStore,
		nowcast.NewService,
		providePoller,
		wire.Bind(new(nowcast.Fetcher), new(*yahoo.Client)),
		wire.Bind(new(nowcast.Normalizer), new(*yahoo.Normalizer)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
