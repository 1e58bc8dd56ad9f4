package main

import (
	"context"
	"log"
	"time"

	"legisense/internal/activities"
	"legisense/internal/config"
	"legisense/internal/storage"
	"legisense/internal/translate"
	"legisense/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	objects, err := storage.NewObjectStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal(err)
	}
	a, err := activities.New(cfg, db, objects, translate.NewGoogleTranslator())
	if err != nil {
		log.Fatal(err)
	}
	activities.Register(w, a)

	log.Printf("legisense worker listening on %s queue=%s llm_providers=%q", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.LLMProviders)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
