package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/database"
	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/router"
	queue_publisher "github.com/iliyamo/task-tracker/internal/service"
	"github.com/iliyamo/task-tracker/internal/session"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	sessions := repository.NewSessionRepo(db)

	manager := session.NewManager(
		sessions,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		cfg.SecureCookies(),
	)

	// Redis backs the rate limiter; nil client disables it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	// Base context: resolve the session cookie on every request.
	e.Use(middleware.ResolveSession(manager))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, manager), limiter)
	router.RegisterTasks(e, handler.NewTaskHandler(tasks, queue_publisher.PublishTaskAudit))
	router.RegisterAdmin(e, handler.NewAdminHandler(users, tasks))

	// Audit trail consumer runs for the lifetime of the process and
	// reconnects on its own.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
