package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Round-Table-Club/battleboard-bot/app"
	"github.com/Round-Table-Club/battleboard-bot/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
