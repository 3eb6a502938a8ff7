/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the live scoring service: SQLite store, the
  background recorder, the engine, and the HTTP server with graceful
  shutdown.

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: scoring.db)
            Use ":memory:" for an in-memory database
  -formats  Optional TOML file with additional match formats

SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits for
  active requests (30s timeout), drains the recorder queue, and closes
  the database.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pavilion/scoring-engine/api"
	"github.com/pavilion/scoring-engine/engine"
	"github.com/pavilion/scoring-engine/format"
	"github.com/pavilion/scoring-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "scoring.db", "SQLite database path")
	formatsPath := flag.String("formats", "", "optional TOML file with extra match formats")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	formats := format.Defaults()
	if *formatsPath != "" {
		extra, err := format.Load(*formatsPath)
		if err != nil {
			log.Fatalf("Failed to load formats: %v", err)
		}
		formats = append(formats, extra...)
	}

	recorder := engine.NewRecorder(store)
	recorder.Start()
	defer recorder.Stop()

	eng := engine.New(store, recorder)
	handler := api.NewHandler(eng, recorder, formats)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Scoring service listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
