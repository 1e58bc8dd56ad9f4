package main

import (
	"log"
	"net/http"

	"legisense/internal/api"
	"legisense/internal/config"
	"legisense/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := storage.RunMigrations(cfg.PostgresURL); err != nil {
		log.Fatal(err)
	}
	h := api.NewServer(cfg)
	log.Printf("legisense api listening on %s llm_providers=%q", cfg.APIAddr, cfg.LLMProviders)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
