package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"signalbot/config"
	"signalbot/pkg/bot"
	"signalbot/pkg/logger"
	"signalbot/pkg/postback"
	"signalbot/storage/postgres"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. Initialize Shared Storage (Postgres)
	pgStore, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	log.Info("🚀 Signal bot backend is initializing...")

	// 4. Initialize Telegram bot (funnel + admin panel)
	tgBot, err := bot.New(&cfg, pgStore, log)
	if err != nil {
		log.Error("Failed to initialize bot", logger.Error(err))
		os.Exit(1)
	}

	// 5. Initialize Postback HTTP server, sharing the bot's service layer
	// so broker events push users through the same flow engine.
	pbServer := postback.New(&cfg, tgBot.Svc, log)

	// 6. Run bot and server in parallel goroutines
	go func() {
		tgBot.Start()
	}()

	go func() {
		if err := pbServer.Run(); err != nil {
			log.Error("Postback server stopped", logger.Error(err))
		}
	}()

	log.Info("🚀 Bot and postback server are now running.")

	// 7. Graceful Shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Stopping bot and shutting down...")
	tgBot.Stop()
}
