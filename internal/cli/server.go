package cli

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calma-service/internal/app"
	"calma-service/internal/config"
	"calma-service/internal/domain"
	"calma-service/internal/infra/memory"
	pgloader "calma-service/internal/infra/postgres"
	redisstore "calma-service/internal/infra/redis"
	"calma-service/internal/logger"
	transport "calma-service/internal/transport/http"
	"calma-service/internal/tts"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var loader memory.ScriptLoader = memory.NewStaticScriptLoader(map[string]domain.Script{
		domain.MiroirCalmaID: domain.MiroirCalmaScript(),
	})
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewScriptLoader(pool)
	}

	scriptTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var scripts app.ScriptRepository
	var store app.SessionRepository
	if redisClient != nil {
		scripts = redisstore.NewScriptRepository(redisClient, loader, scriptTTL)
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		scripts = memory.NewScriptRepository(loader, scriptTTL)
		store = memory.NewSessionStore()
	}
	service := app.NewQuizService(store, scripts, log).WithDefaultScript(cfg.Quiz.ScriptID)

	ttsClient := tts.NewClient(tts.Config{
		BaseURL: cfg.TTS.BaseURL,
		APIKey:  cfg.TTS.APIKey,
		ModelID: cfg.TTS.ModelID,
		Timeout: config.TTLDuration(cfg.TTS.Timeout, tts.DefaultTimeout),
	}, tts.NewCatalog(cfg.TTS.Voices), nil)
	if cfg.TTS.APIKey == "" || len(ttsClient.Catalog().Voices()) == 0 {
		log.Warn("tts relay has no voice configuration; /api/tts will answer 500")
	}

	router := transport.NewRouter(transport.RouterDeps{
		Quiz:           service,
		Scripts:        scripts,
		Prospects:      app.NewProspectEstimator(rand.NewSource(time.Now().UnixNano())),
		TTS:            ttsClient,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	go func() {
		log.Info("starting calma service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
