package main

import (
	"context"
	"fmt"

	"signalbot/config"
	"signalbot/pkg/logger"
	"signalbot/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)

	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Truncate users; deposits go with them via CASCADE.
	// The settings singleton is kept, it holds operator configuration.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE users, deposits CASCADE")
	if err != nil {
		log.Error(fmt.Sprintf("Failed to truncate tables: %v", err))
	} else {
		log.Info("Successfully truncated users and deposits tables.")
	}
}
