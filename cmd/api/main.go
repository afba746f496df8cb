package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/theminddepartment/booking-api/internal/config"
	"github.com/theminddepartment/booking-api/internal/handler"
	authHandler "github.com/theminddepartment/booking-api/internal/handler/auth"
	availabilityHandler "github.com/theminddepartment/booking-api/internal/handler/availability"
	bookingHandler "github.com/theminddepartment/booking-api/internal/handler/booking"
	calendarHandler "github.com/theminddepartment/booking-api/internal/handler/calendar"
	catalogHandler "github.com/theminddepartment/booking-api/internal/handler/catalog"
	intakeHandler "github.com/theminddepartment/booking-api/internal/handler/intake"
	staffHandler "github.com/theminddepartment/booking-api/internal/handler/staff"
	"github.com/theminddepartment/booking-api/internal/middleware"
	"github.com/theminddepartment/booking-api/internal/repository/postgres"
	"github.com/theminddepartment/booking-api/internal/router"
	authService "github.com/theminddepartment/booking-api/internal/service/auth"
	availabilityService "github.com/theminddepartment/booking-api/internal/service/availability"
	bookingService "github.com/theminddepartment/booking-api/internal/service/booking"
	calendarService "github.com/theminddepartment/booking-api/internal/service/calendar"
	catalogService "github.com/theminddepartment/booking-api/internal/service/catalog"
	intakeService "github.com/theminddepartment/booking-api/internal/service/intake"
	staffService "github.com/theminddepartment/booking-api/internal/service/staff"
	"github.com/theminddepartment/booking-api/pkg/auth"
	"github.com/theminddepartment/booking-api/pkg/logger"
	"github.com/theminddepartment/booking-api/pkg/metrics"
	"github.com/theminddepartment/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      parseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Logging.Console,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("booking")

	calendarRepo := postgres.NewCalendarRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	intakeRepo := postgres.NewIntakeRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)

	availabilitySvc := availabilityService.NewService(calendarRepo, staffRepo, serviceRepo, bookingRepo, nil)
	bookingSvc := bookingService.NewService(bookingRepo, serviceRepo, staffRepo, intakeRepo, clientRepo, availabilitySvc, m, log)
	calendarSvc := calendarService.NewService(calendarRepo, staffRepo)
	catalogSvc := catalogService.NewService(serviceRepo)
	staffSvc := staffService.NewService(staffRepo, serviceRepo)
	intakeSvc := intakeService.NewService(intakeRepo, nil)
	authSvc := authService.NewService(cfg.Admin, hasher, jwtSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		availabilityHandler.NewHandler(availabilitySvc, m),
		bookingHandler.NewHandler(bookingSvc),
		catalogHandler.NewHandler(catalogSvc),
		staffHandler.NewHandler(staffSvc),
		intakeHandler.NewHandler(intakeSvc),
		calendarHandler.NewHandler(calendarSvc),
		handler.NewHandler(db),
		router.Config{
			RateLimit:  rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:  cfg.Server.RateLimitBurst,
			CORSConfig: middleware.DefaultCORSConfig(),
			Logger:     log.Zerolog(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{"port": cfg.Server.Port}).Info("starting api server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}

func parseLevel(level string) logger.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
