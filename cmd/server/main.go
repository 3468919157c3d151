package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mzagorenko/clinic/internal/config"
	"github.com/mzagorenko/clinic/internal/db"
	"github.com/mzagorenko/clinic/internal/hash"
	"github.com/mzagorenko/clinic/internal/httpserver"
	"github.com/mzagorenko/clinic/internal/logging"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	loggingmw "github.com/mzagorenko/clinic/internal/middleware/logging"
	"github.com/mzagorenko/clinic/internal/mykafka"
	"github.com/mzagorenko/clinic/internal/service"
	"github.com/mzagorenko/clinic/internal/session"
	"github.com/mzagorenko/clinic/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.TokenSecret, "TOKEN_SECRET_KEY")

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Ошибка миграции БД: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, "user_events")
	} else {
		logger.Warn("KAFKA_BROKERS not set, events will not be published")
	}

	hasher := hash.Hasher{
		Name:       cfg.PasswordHashName,
		Iterations: cfg.PasswordHashIterations,
		Separator:  cfg.PasswordSaltSeparator,
	}
	issuer := tokens.Issuer{
		Secret:    cfg.TokenSecret,
		Algorithm: cfg.Algorithm,
		TTL:       cfg.AccessTokenTTL,
	}
	sessions := &session.Store{DB: database}

	authSvc := &service.AuthService{
		DB:         database,
		Sessions:   sessions,
		Hasher:     hasher,
		Issuer:     issuer,
		RefreshTTL: cfg.RefreshTokenTTL,
		Producer:   producer,
	}
	userSvc := &service.UserService{DB: database, Sessions: sessions, Hasher: hasher, Producer: producer}
	patientSvc := &service.PatientService{DB: database}
	recordSvc := &service.RecordService{DB: database}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Guard:          &authmw.Guard{DB: database, Issuer: issuer},
		AuthHandler:    &httpserver.AuthHandler{Auth: authSvc, Users: userSvc, Cfg: cfg},
		UserHandler:    &httpserver.UserHandler{Users: userSvc, Cfg: cfg},
		PatientHandler: &httpserver.PatientHandler{Patients: patientSvc},
		RecordHandler:  &httpserver.RecordHandler{Records: recordSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
