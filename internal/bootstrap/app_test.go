package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tarot/internal/domain/account"
	"github.com/yanqian/ai-tarot/internal/domain/reading"
	"github.com/yanqian/ai-tarot/internal/infra/config"
	"github.com/yanqian/ai-tarot/internal/infra/tokenstore"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	accounts := account.NewService(nil, tokenstore.NewMemoryStore(), logger)
	readings := reading.NewController(reading.Config{}, nil, nil, nil, nil, nil, logger)

	app := NewApp(cfg, logger, server, accounts, readings)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, app.Run(ctx))
	require.Equal(t, reading.StageIdle, readings.Snapshot().Stage)
	require.False(t, accounts.Current().Authenticated)
}
