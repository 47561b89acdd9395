package main

import (
	"log"
	"net/http"
	"os"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Listen == "" {
		n, err := runJob(cfg.job())
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}
		log.Printf("Written %d contacts to %s", n, cfg.Output)
		return
	}

	srv := &server{cfg: cfg}
	log.Printf("Server started on %s", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, srv.routes()))
}
