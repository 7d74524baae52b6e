// @title        Citizen Complaint Portal API
// @version      1.0
// @description  Session-authenticated complaint filing, status tracking and daily activity updates.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citizenconnect/complaint-portal/internal/api"
	"github.com/citizenconnect/complaint-portal/internal/api/handler"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
	"github.com/citizenconnect/complaint-portal/internal/core/service"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/config"
	mongodb "github.com/citizenconnect/complaint-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/citizenconnect/complaint-portal/internal/infrastructure/db/redis"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/mail"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/queue"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/realtime"
	"github.com/citizenconnect/complaint-portal/internal/infrastructure/storage"
	"github.com/citizenconnect/complaint-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Output: os.Stderr})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "complaint-portal",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	users := mongodb.NewUserRepository(db)
	complaints := mongodb.NewComplaintRepository(db)
	activities := mongodb.NewActivityRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, complaints, activities); err != nil {
		return err
	}

	// --- Mail workers ---
	var sender ports.MailSender = mail.NewLogSender(log)
	mailCfg := mail.Config{Host: cfg.Mail.Host, Port: cfg.Mail.Port, Username: cfg.Mail.Username, Password: cfg.Mail.Password}
	if mailCfg.Configured() {
		sender = mail.NewSMTPSender(mailCfg)
	} else {
		log.Warn().Msg("SMTP not configured, outgoing mail is only logged")
	}
	mailCtx, stopMail := context.WithCancel(context.Background())
	dispatcher := queue.NewMailDispatcher(cfg.Mail.Workers, sender, cfg.Mail.SendTimeout, log)
	dispatcher.Start(mailCtx)
	defer func() {
		stopMail()
		dispatcher.Wait()
	}()

	// --- Realtime ---
	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, cfg.HTTP.AllowedOrigins, log)

	// --- Services ---
	notifier := service.NewNotificationService(hub, registry, dispatcher, redisdb.NewNotificationDedup(rdb), log)
	authService := service.NewAuthService(users, redisdb.NewSessionStore(rdb), dispatcher, cfg.Session.Secret, cfg.Session.TTL, log)
	complaintService := service.NewComplaintService(complaints, users, notifier, log)
	activityService := service.NewActivityService(activities, log)
	chatService := service.NewChatService(complaints, activities, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authService.EnsureDefaultAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	// --- HTTP ---
	files := storage.NewDisk(cfg.HTTP.UploadDir)
	e := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxUploadMB:    cfg.HTTP.MaxUploadMB,
		UploadDir:      files.Root(),
	}, authService, api.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.Session.CookieSecure),
		Complaints: handler.NewComplaintHandler(complaintService, files),
		Chat:       handler.NewChatHandler(chatService),
		Activities: handler.NewActivityHandler(activityService, files),
		Realtime:   handler.NewRealtimeHandler(hub),
		Health:     handler.NewHealthHandler(),
		Readiness: handler.NewReadinessHandler(map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	hub.Close()
	log.Info().Msg("server stopped")
	return nil
}
