package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/courseboard/courseboard/internal/apiclient"
	"github.com/courseboard/courseboard/internal/config"
	"github.com/courseboard/courseboard/internal/console"
	"github.com/courseboard/courseboard/internal/logger"
	"github.com/courseboard/courseboard/internal/session"
	"github.com/courseboard/courseboard/internal/view"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	api := apiclient.New(cfg.APIBaseURL, log)
	store := session.NewStore(cfg.StateDir, api, log)
	api.SetTokenSource(store)
	effects := view.NewEffects(api, store, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := console.New(effects, store, os.Stdin, os.Stdout, log)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Console exited with error")
	}
}
