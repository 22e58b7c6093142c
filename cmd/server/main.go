// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pokerhall/pokerhall/internal/auth"
	"github.com/pokerhall/pokerhall/internal/cache"
	"github.com/pokerhall/pokerhall/internal/database"
	"github.com/pokerhall/pokerhall/internal/handlers"
	"github.com/pokerhall/pokerhall/internal/middleware"
	"github.com/pokerhall/pokerhall/internal/room"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	reg := room.NewRegistry(room.Config{
		MaxRooms:    envInt("MAX_ROOMS", 100),
		TurnTimeout: time.Duration(envInt("TURN_TIMEOUT_SEC", 30)) * time.Second,
		Chips:       database.ChipStore{},
		Results:     cache.ResultSink{},
	}, logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	// room endpoints
	mux.Handle("/room/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(reg),
	)))
	mux.Handle("/room/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(reg),
	)))

	// game websocket
	mux.Handle("/game/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, reg),
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

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
