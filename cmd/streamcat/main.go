package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/nkiryanov/streamcat/internal/client/cli"
	"github.com/nkiryanov/streamcat/internal/client/config"
	"github.com/nkiryanov/streamcat/internal/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
