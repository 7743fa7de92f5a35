package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/config"
	"github.com/SchoolPulse/SP-Gateway/internal/console"
	"github.com/SchoolPulse/SP-Gateway/internal/credstore"
	"github.com/SchoolPulse/SP-Gateway/internal/middleware"
	"github.com/SchoolPulse/SP-Gateway/internal/session"
)

func openStore(cfg config.CredStoreConfig) (credstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return credstore.NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return credstore.NewRedis(client, cfg.RedisPrefix), nil
	case "sqlite", "":
		return credstore.OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown credential store backend %q", cfg.Backend)
	}
}

func main() {
	_ = godotenv.Load(".env.local")

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "console.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	api, err := authapi.NewClient(authapi.LoadFromEnv())
	if err != nil {
		log.Fatal("Failed to set up auth client: ", err)
	}

	store, err := openStore(cfg.CredStore)
	if err != nil {
		log.Fatal("Failed to open credential store: ", err)
	}

	sessions := session.NewService(store)
	// Restore any persisted session before a single guard evaluates.
	sessions.Hydrate()

	handler := &console.Handler{
		Sessions:          sessions,
		Protocol:          session.NewProtocol(sessions, api),
		Refresher:         session.NewRefresher(store, sessions, api),
		API:               api,
		PasswordChangeURL: cfg.APIBaseURL + "/profile/password",
	}

	router := console.SetupRoutes(handler, console.RouteConfig{
		APIBaseURL:     cfg.APIBaseURL,
		LoginPerMinute: cfg.LoginPerMinute,
		LoginBurst:     cfg.LoginBurst,
	})
	wrapped := middleware.RequestLogger(middleware.CORSMiddleware(cfg.AllowedOrigins)(router))

	fmt.Println("Gateway listening on " + cfg.ListenAddr + "...")
	http.ListenAndServe(cfg.ListenAddr, wrapped)
}
