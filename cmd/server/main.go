package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cupoapp/cupo-backend/internal/config"
	"github.com/cupoapp/cupo-backend/internal/database"
	"github.com/cupoapp/cupo-backend/internal/handler"
	"github.com/cupoapp/cupo-backend/internal/logging"
	"github.com/cupoapp/cupo-backend/internal/middleware"
	"github.com/cupoapp/cupo-backend/internal/notifier"
	"github.com/cupoapp/cupo-backend/internal/queue"
	"github.com/cupoapp/cupo-backend/internal/repository"
	"github.com/cupoapp/cupo-backend/internal/router"
	"github.com/cupoapp/cupo-backend/internal/service"
	"github.com/cupoapp/cupo-backend/internal/ws"
)

func main() {
	// .env is optional; in containers the variables come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	offerRepo := repository.NewOfferRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	ratingRepo := repository.NewRatingRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	store := repository.NewReservationStore(db, offerRepo, bookingRepo)

	hub := ws.NewHub()
	emitter := notifier.New(notifRepo, hub, log)

	reservationSvc := service.NewReservationService(store, emitter)
	offerSvc := service.NewOfferService(offerRepo, bookingRepo, emitter,
		service.ParseDeletionPolicy(cfg.OfferDeleteMode))

	go func() {
		if err := queue.StartNotificationConsumer(log); err != nil {
			log.Error("notification consumer stopped", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	offerHandler := handler.NewOfferHandler(offerSvc, offerRepo, bookingRepo)
	bookingHandler := handler.NewBookingHandler(reservationSvc, bookingRepo)
	notifHandler := handler.NewNotificationHandler(notifRepo, hub)
	ratingHandler := handler.NewRatingHandler(ratingRepo, bookingRepo, offerRepo)
	favoriteHandler := handler.NewFavoriteHandler(favoriteRepo, offerRepo)
	publicHandler := handler.NewPublicHandler(offerRepo)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, ratingHandler, cache)
	router.RegisterDriver(e, offerHandler, cfg.JWTSecret)
	router.RegisterBookings(e, bookingHandler, notifHandler, ratingHandler, favoriteHandler, cfg.JWTSecret)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := ":" + cfg.Port
	log.Info("server starting", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
