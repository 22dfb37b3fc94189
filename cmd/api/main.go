package main

import (
	"log"
	"net/http"

	"docflow/internal/api"
	"docflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("docflow api listening on %s embed_provider=%q temporal=%q", cfg.APIAddr, cfg.EmbedProviders, cfg.TemporalAddress)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
