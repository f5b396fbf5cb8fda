// Package main starts the largest-image feed service.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/feedmill/feedmill/internal/config"
	"github.com/feedmill/feedmill/internal/fetch"
	"github.com/feedmill/feedmill/internal/imagefeed"
	"github.com/feedmill/feedmill/internal/store"
)

func main() {
	log.SetPrefix("[IMAGEFEED] ")

	var cfg config.ImageFeed
	if err := config.Parse(&cfg); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	articles, err := store.OpenArticles(cfg.StorePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}

	srv := imagefeed.NewServer(fetch.New(fetch.Options{}), articles, cfg.ExternalHost)

	log.Printf("listening on :%d", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.Routes()); err != nil {
		log.Fatalf("serving: %v", err)
	}
}
