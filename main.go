package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard-api/api"
	"taskboard-api/domain"
	"taskboard-api/storage"
)

const defaultDBPath = "data/db.json"

func main() {
	_ = godotenv.Load()

	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing JWT_SECRET")
	}
	sessionTTL := api.DefaultSessionTTL
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid SESSION_TTL: %v", err)
		}
		sessionTTL = d
	}

	store := newStore()

	auth := api.NewAuth([]byte(secret), sessionTTL)
	users := domain.NewUserService(store)
	boards := domain.NewBoardService(store)
	tasks := domain.NewTaskService(store)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	logger := log.New()
	api.Register(e, users, boards, tasks, auth, logger, api.Config{
		SessionTTL:    sessionTTL,
		SecureCookies: os.Getenv("COOKIE_SECURE") == "1",
	})

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func newStore() domain.Store {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "", "file":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = defaultDBPath
		}
		return storage.NewFileStore(path)
	case "redis":
		connStr := os.Getenv("REDIS_CONNECTION_STRING")
		if connStr == "" {
			log.Fatal("missing redis config")
		}
		opts, err := storage.ParseRedisOptions(connStr)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		return storage.NewRedisStore(redis.NewClient(opts))
	case "aztables":
		connStr := os.Getenv("STORAGE_CONNECTION_STRING")
		usersTable := os.Getenv("USERS_TABLE")
		boardsTable := os.Getenv("BOARDS_TABLE")
		tasksTable := os.Getenv("TASKS_TABLE")
		if connStr == "" || usersTable == "" || boardsTable == "" || tasksTable == "" {
			log.Fatal("missing storage config")
		}
		store, err := storage.NewTableStore(connStr, usersTable, boardsTable, tasksTable)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		return store
	default:
		log.Fatalf("unknown STORE_BACKEND %q", os.Getenv("STORE_BACKEND"))
		return nil
	}
}
