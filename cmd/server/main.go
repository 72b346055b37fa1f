// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/bankroll-games/bankroll/internal/cache"
	"github.com/bankroll-games/bankroll/internal/handlers"
	"github.com/bankroll-games/bankroll/internal/middleware"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// The history queue is optional: rooms live and die in memory either way.
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable, game summaries will not be recorded: %v", err)
	}

	rs := handlers.NewRoomServer(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.HealthHandler(rs))
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, rs),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
