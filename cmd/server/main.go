package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campusbooking/classroom-reservation/internal/config"
	"github.com/campusbooking/classroom-reservation/internal/database"
	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/handler"
	"github.com/campusbooking/classroom-reservation/internal/middleware"
	"github.com/campusbooking/classroom-reservation/internal/queue"
	"github.com/campusbooking/classroom-reservation/internal/repository"
	"github.com/campusbooking/classroom-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Persistence.
	reservations := repository.NewReservationStore(db)
	classrooms := repository.NewClassroomStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Domain layer.
	eng := engine.New(reservations)
	registry := engine.NewRegistry(classrooms)

	// HTTP layer.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	reservationH := handler.NewReservationHandler(eng)
	classroomH := handler.NewClassroomHandler(registry)
	userH := handler.NewUserHandler(users, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional infrastructure: without it the server runs with
	// caching and rate limiting disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	// The response cache only wraps the classroom read routes; reservation
	// and user responses are caller-scoped.
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAPI(e, cfg.JWTSecret, reservationH, classroomH, userH, cacheMW)

	// Decision events land in logs/reservations.log; the consumer reconnects
	// on broker failure and never takes the server down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
