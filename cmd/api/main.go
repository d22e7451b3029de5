package main

import (
	"context"
	"log"

	"resumind/internal/bootstrap"
	"resumind/internal/shared/config"
	"resumind/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	// Serve regardless of readiness: the health endpoint reports the
	// recorded error when the backend never came up.
	if err := app.WaitReady(context.Background()); err != nil {
		log.Printf("backend not ready: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
