//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/merchant-insights/internal/bootstrap"
	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/forecast"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
	"github.com/yanqian/merchant-insights/internal/domain/notes"
	"github.com/yanqian/merchant-insights/internal/infra/config"
	httpiface "github.com/yanqian/merchant-insights/internal/interface/http"
	"github.com/yanqian/merchant-insights/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideForecastConfig,
		provideInsightConfig,
		provideAuthConfig,
		providePostgresPool,
		provideValkeyClient,
		provideSalesStore,
		provideForecastStore,
		provideCompetitorStore,
		provideNoteStore,
		provideShopRepository,
		provideStatsCache,
		provideSeriesRepository,
		provideSalesRepository,
		provideForecastRepository,
		provideCompetitorRepository,
		provideNoteRepository,
		provideStatsStore,
		providePurgers,
		forecast.NewService,
		insight.NewService,
		notes.NewService,
		auth.NewService,
		httpiface.NewForecastHandler,
		httpiface.NewInsightHandler,
		httpiface.NewAuthHandler,
		httpiface.NewWebhookHandler,
		httpiface.NewNoteHandler,
		httpiface.NewHandlers,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
