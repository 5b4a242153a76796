package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"github.com/PantengZhao/Master-Thesis/internal/config"
	"github.com/PantengZhao/Master-Thesis/internal/logger"
	"github.com/PantengZhao/Master-Thesis/internal/sampler"
	"github.com/PantengZhao/Master-Thesis/internal/youtube"
)

func main() {
	_ = godotenv.Load() // loads .env

	configPath := flag.String("config", "sampler.yaml", "sampler config file (optional)")
	output := flag.String("output", "", "output CSV path (overrides config)")
	flag.Parse()

	log := logger.New().WithRun("sampler")
	log.Info("starting candidate sampling")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}
	if *output != "" {
		cfg.Output = *output
	}

	client := youtube.NewClient(cfg.APIKey)
	if err := sampler.Run(context.Background(), cfg, client, log); err != nil {
		log.WithError(err).Fatal("sampling run failed")
	}
}
