// Package main starts the day-recap feed service.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/feedmill/feedmill/internal/config"
	"github.com/feedmill/feedmill/internal/fetch"
	"github.com/feedmill/feedmill/internal/llm"
	"github.com/feedmill/feedmill/internal/recapfeed"
	"github.com/feedmill/feedmill/internal/store"
)

func main() {
	log.SetPrefix("[RECAPFEED] ")

	var cfg config.RecapFeed
	if err := config.Parse(&cfg); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	recaps, err := store.OpenRecaps(cfg.StorePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}

	llmClient := llm.New(cfg.LLMBaseURL, cfg.LLMKey, cfg.LLMModel)
	srv := recapfeed.NewServer(fetch.New(fetch.Options{}), llmClient, recaps)

	log.Printf("listening on :%d", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.Routes()); err != nil {
		log.Fatalf("serving: %v", err)
	}
}
