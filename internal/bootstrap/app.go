// Package bootstrap wires configuration, storage, the AI client and the
// services into a runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "resumind/internal/auth"
	"resumind/internal/backend"
	"resumind/internal/convert"
	"resumind/internal/llm"
	"resumind/internal/llm/gemini"
	"resumind/internal/llm/openai"
	"resumind/internal/maintenance"
	"resumind/internal/records"
	"resumind/internal/shared/config"
	"resumind/internal/shared/server"
	"resumind/internal/shared/storage/db"
	"resumind/internal/shared/storage/kv"
	"resumind/internal/shared/storage/object"
	localstore "resumind/internal/shared/storage/object/local"
	s3store "resumind/internal/shared/storage/object/s3"
	"resumind/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.ObjectStore
	KV      kv.Store
	Backend *backend.Facade

	RecordsService     *records.Service
	MaintenanceService *maintenance.Service
	RecordsHandler     *records.Handler
	MaintenanceHandler *maintenance.Handler
	GoogleAuth         *googleauth.GoogleService
}

// Build prepares all dependencies and the router. The backend facade is
// constructed but not yet ready; callers run WaitReady before serving.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Init(cfg.Debug)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	kvs := buildKV(sqlDB)

	aiClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	facade := backend.New(store, kvs, aiClient, backend.Options{
		PollInterval: cfg.ReadyPollInterval,
		Timeout:      cfg.ReadyTimeout,
	})

	recordsSvc := records.NewService(facade, convert.New(), records.NewStore(facade.KV()))
	maintenanceSvc := maintenance.NewService(facade)

	app := &App{
		Config:             cfg,
		DB:                 sqlDB,
		Store:              store,
		KV:                 kvs,
		Backend:            facade,
		RecordsService:     recordsSvc,
		MaintenanceService: maintenanceSvc,
		RecordsHandler:     records.NewHandler(recordsSvc),
		MaintenanceHandler: maintenance.NewHandler(maintenanceSvc),
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
		),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Backend:            facade,
		RecordsHandler:     app.RecordsHandler,
		MaintenanceHandler: app.MaintenanceHandler,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

// WaitReady blocks until the backend facade passes its readiness probe or
// gives up. A failure is returned but the app stays routable so the health
// endpoint can report the recorded error.
func (a *App) WaitReady(ctx context.Context) error {
	return a.Backend.WaitReady(ctx)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap: DATABASE_URL empty; using in-memory key-value store", nil)
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Error("bootstrap: database connect failed; using in-memory key-value store", map[string]any{"error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildKV(sqlDB *sql.DB) kv.Store {
	if sqlDB != nil {
		return &kv.PGStore{DB: sqlDB}
	}
	return kv.NewMemoryStore()
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
