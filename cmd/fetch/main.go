package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tilasto"
	"tilasto/datasets"
	"tilasto/pxweb"
)

const defaultBaseURL = "https://pxdata.stat.fi/PxWeb/api/v1/en"

func main() {
	baseURL := flag.String("base_url", envOr("PXWEB_BASE_URL", defaultBaseURL), "")
	dataDir := flag.String("data_dir", envOr("DATA_DIR", "./data"), "")
	only := flag.String("only", "", "comma separated job names, empty runs all")
	timeout := flag.Duration("timeout", 60*time.Second, "")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("failed to load .env: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	writer, err := tilasto.NewFileWriter(*dataDir,
		tilasto.LoggerFileWriterOption(logger))
	if err != nil {
		logger.Fatal("failed to init dataset writer", zap.Error(err))
	}

	env := datasets.Env{
		Client: pxweb.NewClient(*baseURL,
			pxweb.LoggerClientOption(logger),
			pxweb.TimeoutClientOption(*timeout)),
		Writer:  writer,
		DataDir: *dataDir,
		Logger:  logger,
	}

	selected := selectJobs(datasets.All(), *only)
	if len(selected) == 0 {
		logger.Fatal("no jobs match the selection", zap.String("only", *only))
	}

	ctx := context.Background()
	failed := 0
	for _, job := range selected {
		start := time.Now()
		if err := job.Run(ctx, env); err != nil {
			failed++
			logger.Error("job failed",
				zap.String("job", job.Name),
				zap.Error(err))

			continue
		}
		logger.Info("job done",
			zap.String("job", job.Name),
			zap.Duration("elapsed", time.Since(start)))
	}

	logger.Info("run finished",
		zap.String("run_id", writer.RunID()),
		zap.Int("jobs", len(selected)),
		zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func selectJobs(all []datasets.Job, only string) []datasets.Job {
	if only == "" {
		return all
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(only, ",") {
		wanted[strings.TrimSpace(name)] = true
	}

	var selected []datasets.Job
	for _, job := range all {
		if wanted[job.Name] {
			selected = append(selected, job)
		}
	}

	return selected
}
