package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"flipgrid-server/api"
	"flipgrid-server/config"
	"flipgrid-server/lobby"
	"flipgrid-server/loghandler"
	"flipgrid-server/storage"
	"flipgrid-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables.")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, slog.LevelInfo)))

	cfg := config.Load()

	if cfg.AuthBaseURL == "" {
		log.Print("Auth: AUTH_BASE_URL is not set — rounds are recorded anonymously and /api/history is unavailable.")
	} else {
		log.Printf("Auth: configured (base URL: %s)", cfg.AuthBaseURL)
	}

	log.Printf("Configuration: GridRows=%d, GridCols=%d, ExtraFlipAllowance=%d, MaxPlayersPerRoom=%d, WSPort=%d",
		cfg.GridRows, cfg.GridCols, cfg.ExtraFlipAllowance, cfg.MaxPlayersPerRoom, cfg.WSPort)

	ctx := context.Background()

	// Round history store (optional; DATABASE_URL empty disables it)
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if store == nil {
		log.Print("Storage: DATABASE_URL is not set — rounds will not be recorded.")
	} else {
		defer store.Close()
	}

	// Set up lobby
	var rounds storage.RoundStore
	if store != nil {
		rounds = store
	}
	lby := lobby.New(cfg, rounds)

	// Set up WebSocket hub
	hub := ws.NewHub(cfg, lby)
	go hub.Run(ctx)

	// HTTP handlers
	apiHandler := api.NewHandler(cfg, store)
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	})
	http.HandleFunc("/api/history", apiHandler.History)
	http.HandleFunc("/api/leaderboard", apiHandler.Leaderboard)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	log.Printf("Flip Grid server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
