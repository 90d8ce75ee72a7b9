package main

import (
	"flag"
	"log"
	"os"

	"NatalChart/internal/di"
	"NatalChart/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config; env vars override it")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("natal: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("natal: build app: %v", err)
	}

	log.Printf("natal: env=%s model=%s http=:%d kafka=%t cache=%t",
		cfg.Environment, cfg.Chart.Model, cfg.Server.Port, cfg.Kafka.Enabled, cfg.Cache.Enabled)

	// blocks until SIGINT/SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("natal: %v", err)
		os.Exit(1)
	}
}
