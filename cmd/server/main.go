package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	roomRepo := repository.NewRoomRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)
	holdRepo := repository.NewHoldRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	userRepo := repository.NewUserRepo(db)

	// Events are best-effort; without a broker URL they are disabled
	// and sales proceed without them.
	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartTicketConsumer(cfg.AMQPURL); err != nil {
				log.Printf("ticket consumer stopped: %v", err)
			}
		}()
	}

	roomSvc := service.NewRoomService(roomRepo, seatRepo, showtimeRepo)
	showtimeSvc := service.NewShowtimeService(showtimeRepo, roomRepo, movieRepo, holdRepo, ticketRepo, publisher)
	reservationSvc := service.NewReservationService(seatRepo, showtimeRepo, holdRepo, ticketRepo, userRepo, publisher, cfg.HoldTTL)
	seatMapSvc := service.NewSeatMapService(roomRepo, seatRepo, showtimeRepo, holdRepo, ticketRepo)

	sweeper := service.NewHoldSweeper(holdRepo, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("hold sweeper: %v", err)
	}
	defer sweeper.Stop()

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis is optional: without it the cache and rate limiter
	// middlewares pass requests straight through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	h := handler.NewHandler(roomSvc, showtimeSvc, reservationSvc, seatMapSvc)
	router.Register(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
