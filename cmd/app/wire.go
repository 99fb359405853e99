//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/microcosm-cc/bluemonday"

	"github.com/yanqian/ai-tarot/internal/bootstrap"
	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
	"github.com/yanqian/ai-tarot/internal/infra/config"
	"github.com/yanqian/ai-tarot/internal/infra/tarotapi"
	httpiface "github.com/yanqian/ai-tarot/internal/interface/http"
	"github.com/yanqian/ai-tarot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideReadingConfig,
		provideTarotClient,
		provideSanitizer,
		provideTokenStore,
		provideTokenSource,
		provideCatalogCache,
		reading.NewController,
		account.NewService,
		history.NewService,
		wire.Bind(new(reading.SessionAPI), new(*tarotapi.Client)),
		wire.Bind(new(reading.CatalogAPI), new(*tarotapi.Client)),
		wire.Bind(new(reading.InterpretationAPI), new(*tarotapi.Client)),
		wire.Bind(new(reading.Sanitizer), new(*bluemonday.Policy)),
		wire.Bind(new(account.API), new(*tarotapi.Client)),
		wire.Bind(new(history.API), new(*tarotapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
