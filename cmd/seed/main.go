package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brickvest/brickvest/internal/pkg/config"
	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/services/factory"
	propertyrepo "github.com/brickvest/brickvest/services/property/repository"
)

// Seeds the demo property catalogue into whichever backend the environment
// selects. Safe to run repeatedly.
func main() {
	configPath := flag.String("config", ".env", "path to the env file")
	flag.Parse()

	cfg := config.InitConfig(*configPath)

	zapLogger, err := logger.InitFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	store := localstore.New(cfg.Storage.DataDir)
	repoFactory := factory.New(cfg, store, zapLogger)
	defer repoFactory.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	properties := propertyrepo.DefaultSeedProperties()
	if err := repoFactory.PropertyRepository("").SeedProperties(ctx, properties); err != nil {
		zapLogger.Fatal("seeding failed", logger.Err(err))
	}

	zapLogger.Info("catalogue seeded",
		logger.String("backend", string(repoFactory.Backend())),
		logger.Int("properties", len(properties)))
}
