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
	"github.com/redis/go-redis/v9"

	"github.com/hrlmwn/feedgram/internal/apperr"
	"github.com/hrlmwn/feedgram/internal/config"
	"github.com/hrlmwn/feedgram/internal/crypto"
	"github.com/hrlmwn/feedgram/internal/events"
	"github.com/hrlmwn/feedgram/internal/handlers"
	"github.com/hrlmwn/feedgram/internal/logging"
	"github.com/hrlmwn/feedgram/internal/mail"
	authmw "github.com/hrlmwn/feedgram/internal/middleware/auth"
	loggingmw "github.com/hrlmwn/feedgram/internal/middleware/logging"
	"github.com/hrlmwn/feedgram/internal/repo"
	"github.com/hrlmwn/feedgram/internal/session"
	"github.com/hrlmwn/feedgram/internal/tokens"
	httpserver "github.com/hrlmwn/feedgram/internal/transport/http"
	"github.com/hrlmwn/feedgram/internal/verification"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	configuration.MustValidate()

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: configuration.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	cipher, err := crypto.New(configuration.EncryptionKey)
	if err != nil {
		log.Fatalf("cipher init error: %v", err)
	}

	tokenService := tokens.NewService(
		configuration.JWTSecret,
		configuration.RefreshSecret,
		configuration.LinkSecret,
	)

	var producer *events.Producer
	if len(configuration.KafkaBrokers) > 0 {
		producer = events.NewProducer(configuration.KafkaBrokers)
	}

	authHandler := &handlers.AuthHandler{
		Users:    &repo.UserRepo{DB: db},
		Codes:    &verification.Ledger{DB: db},
		Sessions: session.NewStore(rdb, tokenService.RefreshTTL),
		Tokens:   tokenService,
		Cipher:   cipher,
		Mailer: mail.NewSMTP(mail.SMTPConfig{
			Host:     configuration.SMTPHost,
			Port:     configuration.SMTPPort,
			Username: configuration.SMTPUsername,
			Password: configuration.SMTPPassword,
			From:     configuration.SMTPFrom,
		}),
		Events:           producer,
		CookieAccessName: configuration.CookieAccessName,
		CookieIDName:     configuration.CookieIDName,
		ClientOrigin:     configuration.ClientOrigin,
		Secure:           configuration.IsProduction(),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: authHandler,
		Guard: &authmw.Guard{
			Tokens:     tokenService,
			Cipher:     cipher,
			CookieName: configuration.CookieAccessName,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
