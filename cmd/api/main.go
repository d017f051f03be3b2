package main

import (
	"log"
	"net/http"

	"docqa/internal/api"
	"docqa/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("docqa api listening on %s embed_provider=%q llm_provider=%q index=%q", cfg.APIAddr, cfg.EmbedProvider, cfg.LLMProvider, cfg.VectorIndex)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
