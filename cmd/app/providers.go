package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/history"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
	"github.com/yanqian/ai-tarot/internal/infra/catalogcache"
	"github.com/yanqian/ai-tarot/internal/infra/config"
	"github.com/yanqian/ai-tarot/internal/infra/tarotapi"
	"github.com/yanqian/ai-tarot/internal/infra/tokenstore"
)

func provideReadingConfig(cfg *config.Config) reading.Config {
	return reading.Config{
		HandSize:       cfg.Reading.HandSize,
		DefaultDetail:  reading.Detail(cfg.Reading.DefaultDetail),
		StatusMessages: cfg.Reading.StatusMessages,
		StatusInterval: cfg.Reading.StatusInterval,
		CatalogTTL:     cfg.Reading.CatalogTTL,
	}
}

func provideTarotClient(cfg *config.Config) *tarotapi.Client {
	return tarotapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
}

func provideSanitizer() *bluemonday.Policy {
	return bluemonday.UGCPolicy()
}

func provideTokenStore(cfg *config.Config) (account.TokenStore, error) {
	return tokenstore.NewFileStore(cfg.Auth.TokenPath)
}

func provideTokenSource(svc account.Service) history.TokenSource {
	return svc
}

func provideCatalogCache(cfg *config.Config, logger *slog.Logger) reading.CatalogCache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return catalogcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return catalogcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("catalog valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return catalogcache.NewValkeyStore(client, cfg.Cache.Valkey.Prefix)
		}
	}
	return catalogcache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
