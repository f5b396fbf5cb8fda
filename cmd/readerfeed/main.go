// Package main starts the full-text reader feed service.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/feedmill/feedmill/internal/config"
	"github.com/feedmill/feedmill/internal/fetch"
	"github.com/feedmill/feedmill/internal/readerfeed"
)

func main() {
	log.SetPrefix("[READERFEED] ")

	var cfg config.ReaderFeed
	if err := config.Parse(&cfg); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	srv := readerfeed.NewServer(fetch.New(fetch.Options{}))

	log.Printf("listening on :%d", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.Routes()); err != nil {
		log.Fatalf("serving: %v", err)
	}
}
