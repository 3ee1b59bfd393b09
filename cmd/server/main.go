package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/auth"
	"github.com/okulov/home-library/internal/config"
	"github.com/okulov/home-library/internal/database"
	"github.com/okulov/home-library/internal/handler"
	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/middleware"
	"github.com/okulov/home-library/internal/queue"
	"github.com/okulov/home-library/internal/repository"
	"github.com/okulov/home-library/internal/router"
	queue_publisher "github.com/okulov/home-library/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; middleware fails open

	profiles := repository.NewProfileRepo(db)
	tokens := repository.NewTokenRepo(db)
	books := repository.NewBookRepo(db)
	copies := repository.NewCopyRepo(db)
	branches := repository.NewBranchRepo(db)
	loans := repository.NewLoanRepo(db)

	meta := lookup.NewClient(time.Duration(cfg.LookupTimeout) * time.Second)

	sessions := &auth.Notifier{}
	sessions.Subscribe(func(ev auth.SessionEvent) {
		log.Printf("session: %s profile=%s email=%s", ev.Type, ev.ProfileID, ev.Email)
	})

	authH := handler.NewAuthHandler(cfg, profiles, tokens, sessions)
	userH := handler.NewUserHandler(profiles)
	bookH := handler.NewBookHandler(books, copies, meta)
	copyH := handler.NewCopyHandler(copies, books, branches, meta)
	branchH := handler.NewBranchHandler(branches, profiles)
	loanH := handler.NewLoanHandler(loans, queue_publisher.PublishLoanEvent)

	e := echo.New()
	e.HideBanner = true

	// Global token-bucket rate limit; per-route response cache is applied to
	// the public catalog group only.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, bookH, copyH, branchH, cache)
	router.RegisterAuth(e, authH, userH, bookH, loanH, cfg.JWTSecret)
	router.RegisterOwner(e, copyH, branchH, loanH, cfg.JWTSecret)
	router.RegisterAdmin(e, bookH, branchH, userH, cfg.JWTSecret)

	// Lending activity consumer writes logs/lending.log; it reconnects on
	// broker failure and never takes the API down.
	go func() {
		if err := queue.StartLoanConsumer(); err != nil {
			log.Printf("loan consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
