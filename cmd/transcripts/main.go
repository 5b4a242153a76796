package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"

	"github.com/PantengZhao/Master-Thesis/internal/config"
	"github.com/PantengZhao/Master-Thesis/internal/fetcher"
	"github.com/PantengZhao/Master-Thesis/internal/logger"
	"github.com/PantengZhao/Master-Thesis/internal/transcript"
)

func main() {
	_ = godotenv.Load() // loads .env

	input := flag.String("input", "youtube_core.csv", "input table exported from Numbers")
	output := flag.String("output", "youtube_core_transcripts.csv", "output CSV with transcripts")
	flag.Parse()

	log := logger.New().WithRun("transcripts")
	log.Info("starting transcript collection")

	langs := config.Default().Languages
	resolver := transcript.NewResolver(transcript.NewClient(), langs, log)

	opts := fetcher.Options{Input: *input, Output: *output}
	if err := fetcher.Run(context.Background(), opts, resolver, log); err != nil {
		log.WithError(err).Fatal("transcript run failed")
	}
}
