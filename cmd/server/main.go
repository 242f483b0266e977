package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/vacation-rental/internal/config"
	"github.com/iliyamo/vacation-rental/internal/database"
	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/logger"
	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/queue"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/router"
	"github.com/iliyamo/vacation-rental/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init("vacation-rental", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dialect, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, dialect); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	var events service.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitMQURL)
		consumer := queue.NewConsumer(cfg.RabbitMQURL, log.With().Str("component", "consumer").Logger())
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	users := repository.NewUserRepo(db)
	ads := repository.NewAdRepo(db, dialect)
	bookings := repository.NewBookingRepo(db)
	comments := repository.NewCommentRepo(db)

	availability := service.NewAvailabilityCache(cacheCfg.AvailabilitySize, cacheCfg.AvailabilityTTL)
	defer availability.Stop()
	adSvc := service.NewAdService(ads, bookings, comments, availability, events)
	bookingSvc := service.NewBookingService(ads, bookings, availability, events)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret))
	e.Use(middleware.NewRedisCache(cacheCfg, rdb))

	auth := handler.NewAuthHandler(cfg, users)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterAPI(e, router.Handlers{
		Users:    handler.NewUserHandler(users, ads),
		Ads:      handler.NewAdHandler(ads, adSvc),
		Bookings: handler.NewBookingHandler(bookings, bookingSvc),
		Comments: handler.NewCommentHandler(comments, ads),
	}, cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("driver", string(dialect)).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}
