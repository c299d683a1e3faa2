package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/soundroom/server/internal/controller"
	roomRedis "github.com/soundroom/server/internal/repository/room/redis"
	"github.com/soundroom/server/internal/repository/wssender"
	"github.com/soundroom/server/internal/service/room"
	"github.com/soundroom/server/pkg/ctxlogger"
	"github.com/soundroom/server/pkg/redisclient"
	"github.com/soundroom/server/pkg/spotify"
)

type AppConfig struct {
	Secret              string `json:"-"`
	Host                string `json:"host"`
	Port                int    `json:"port"`
	LogLevel            string `json:"log_level"`
	QueueLimit          int    `json:"queue_limit"`
	PollIntervalMs      int    `json:"poll_interval_ms"`
	FirstPollDelayMs    int    `json:"first_poll_delay_ms"`
	RedisPort           int    `json:"redis_port"`
	RedisHost           string `json:"redis_host"`
	RedisPassword       string `json:"-"`
	SpotifyClientID     string `json:"spotify_client_id"`
	SpotifyClientSecret string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	if cfg.PollIntervalMs < 1 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomRedis.NewRepo(rc, 24*14*time.Hour)
	connRepo := wssender.NewRepo()
	provider := spotify.NewClient(&spotify.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
	})
	roomService := room.NewService(roomRepo, connRepo, provider, logger, &room.Config{
		Secret:         cfg.Secret,
		QueueLimit:     cfg.QueueLimit,
		PollInterval:   time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		FirstPollDelay: time.Duration(cfg.FirstPollDelayMs) * time.Millisecond,
	})
	controller := controller.NewController(roomService, connRepo, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
