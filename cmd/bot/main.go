package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demon-soldier/sanctuary-poll/internal/config"
	"github.com/demon-soldier/sanctuary-poll/internal/discord"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/contract"
	"github.com/demon-soldier/sanctuary-poll/internal/domain/service"
	"github.com/demon-soldier/sanctuary-poll/internal/handlers"
	"github.com/demon-soldier/sanctuary-poll/internal/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slack-go/slack"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	config.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	discordClient, err := discord.New(cfg.DiscordToken, cfg.EnableTestCommand)
	if err != nil {
		slog.Error("Failed to create Discord client", "error", err)
		os.Exit(1)
	}

	var slackClient contract.SlackClient
	if cfg.SlackEnabled() {
		slackClient = slack.New(cfg.SlackBotToken)
		slog.Info("Slack mirror enabled", "channel_id", cfg.SlackChannelID)
	}

	destinations := service.BuildDestinations(cfg.ChannelIDs, cfg.SlackChannelID)
	services := service.NewInstance(destinations, discordClient, slackClient, m)

	if cfg.EnableTestCommand {
		handler := handlers.New(ctx, discordClient, services.Poll, destinations)
		discordClient.AddHandler(handler.HandleMessageCreate)
		slog.Info("Test command enabled")
	}

	if err := services.Scheduler.Start(ctx, discordClient.Ready()); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer services.Scheduler.Stop()

	if err := discordClient.Open(); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}
	defer discordClient.Close()

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(discordClient.IsReady))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}
}
