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

	"github.com/watchparty/server/internal/controller"
	"github.com/watchparty/server/internal/repository/connection/inmemory"
	"github.com/watchparty/server/internal/repository/room/redis"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/ctxlogger"
	"github.com/watchparty/server/pkg/redisclient"
)

type AppConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	LogLevel        string `json:"log_level"`
	UploadDir       string `json:"upload_dir"`
	MaxUploadMb     int    `json:"max_upload_mb"`
	TypingTimeoutMs int    `json:"typing_timeout_ms"`
	MessageMaxLen   int    `json:"message_max_length"`
	PollOptionsMax  int    `json:"poll_options_limit"`
	RedisPort       int    `json:"redis_port"`
	RedisHost       string `json:"redis_host"`
	RedisPassword   string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.UploadDir == "" {
		return fmt.Errorf("upload dir must not be empty")
	}
	if cfg.MaxUploadMb < 1 {
		return fmt.Errorf("max upload size must be greater than 0")
	}
	if cfg.TypingTimeoutMs < 1 {
		return fmt.Errorf("typing timeout must be greater than 0")
	}
	if cfg.MessageMaxLen < 1 {
		return fmt.Errorf("message max length must be greater than 0")
	}
	if cfg.PollOptionsMax < 2 {
		return fmt.Errorf("poll options limit must be at least 2")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
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

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	roomRepo := redis.NewRepo(rc, 24*14*time.Hour)
	connectionRepo := inmemory.NewRepo()
	roomService := room.NewService(roomRepo, connectionRepo, &room.Config{
		TypingTimeout:    time.Duration(cfg.TypingTimeoutMs) * time.Millisecond,
		MessageMaxLength: cfg.MessageMaxLen,
		PollOptionsLimit: cfg.PollOptionsMax,
	}, logger)
	controller := controller.NewController(roomService, controller.Config{
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: int64(cfg.MaxUploadMb) << 20,
		SendBufferSize: 32,
	}, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

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

		err := server.Shutdown(shutdownCtx)
		if err != nil {
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
