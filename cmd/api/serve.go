package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xavierca1/dealer-leads/internal/config"
	"github.com/xavierca1/dealer-leads/internal/infra/http/handlers"
	"github.com/xavierca1/dealer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dealer-leads/internal/infra/mail"
	"github.com/xavierca1/dealer-leads/internal/infra/queue"
	"github.com/xavierca1/dealer-leads/internal/infra/realtime"
	"github.com/xavierca1/dealer-leads/internal/usecase"
)

const version = "1.0.0"

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the live feed and the assignment worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
}

func serveRun(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := commonRun(cfg.Debug)
	logger.Info("starting", "component", programName, "version", version)

	dir, err := config.LoadDirectory(cfg.RosterFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()
	if err := store.migrate(ctx); err != nil {
		return err
	}

	checks := map[string]handlers.HealthCheck{
		"database": store.ping,
		"redis":    nil,
		"rabbitmq": nil,
	}

	// 2. Live feed, relayed across instances when redis is configured
	feed := realtime.NewFeed(store.repo, logger)
	var notifier realtime.ChangeNotifier = feed
	if cfg.RedisURL != "" {
		client, err := realtime.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := realtime.NewRedisRelay(client, cfg.RedisChannel, feed, logger)
		notifier = relay
		checks["redis"] = relay.Ping
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("redis relay stopped", "error", err)
			}
		}()
	}
	repo := realtime.NewNotifyingRepository(store.repo, notifier)

	// 3. Events and the assignment worker
	var publisher usecase.LeadEventPublisher
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		publisher = queue.NewProducer(rabbit.Ch)
		checks["rabbitmq"] = func(context.Context) error {
			if !rabbit.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		}

		if cfg.MailConfig.Enabled() {
			consumerCh, err := rabbit.Conn.Channel()
			if err != nil {
				return err
			}
			sender := mail.NewEmailSender(cfg.MailConfig.Host, cfg.MailConfig.Port, cfg.MailConfig.User, cfg.MailConfig.Pass, cfg.MailConfig.From)
			worker := queue.NewWorker(consumerCh, dir.Advisors, sender, logger)
			go func() {
				if err := worker.Start(ctx, queue.QueueName); err != nil && ctx.Err() == nil {
					logger.Error("assignment worker stopped", "error", err)
				}
			}()
		} else {
			logger.Info("MAIL_HOST not set, assignment emails disabled")
		}
	}

	// 4. Use cases
	deps := usecase.Deps{
		Repo:             repo,
		Roster:           dir.Advisors,
		Models:           dir.Models,
		Publisher:        publisher,
		Metrics:          middleware.PrometheusRecorder{},
		Logger:           logger,
		MaxWriteAttempts: cfg.MaxWriteAttempts,
	}
	queryUC := usecase.NewLeadQueryUseCase(deps)

	// 5. Handlers and router
	limiter := handlers.NewRateLimiter(cfg.IntakeRateLimit, time.Minute)
	defer limiter.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Roster:         dir.Advisors,
		AllowedOrigins: cfg.AllowedOrigins,
		Leads: handlers.NewLeadHandler(
			usecase.NewCreateLeadUseCase(deps),
			usecase.NewChangeStatusUseCase(deps),
			usecase.NewAddCommentUseCase(deps),
			queryUC,
			limiter,
			logger,
		),
		Board:  handlers.NewBoardHandler(queryUC, dir.Models, logger),
		Live:   handlers.NewLiveHandler(feed, cfg.AllowedOrigins, logger),
		Health: handlers.NewHealthHandler(version, checks),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening",
		"addr", cfg.HTTPAddr,
		"store", cfg.Store,
		"advisors", len(dir.Advisors),
		"models", len(dir.Models),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
