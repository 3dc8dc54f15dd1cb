package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/dashboard"
	"compliance-backend/internal/debugapi"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/extract"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/llm"
	openai "compliance-backend/internal/llm/openai"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/queue"
	"compliance-backend/internal/services/health"
	"compliance-backend/internal/sessions"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/server"
	"compliance-backend/internal/shared/storage/db"
	"compliance-backend/internal/shared/storage/object"
	localstore "compliance-backend/internal/shared/storage/object/local"
	s3store "compliance-backend/internal/shared/storage/object/s3"
	"compliance-backend/internal/shared/telemetry"
	"compliance-backend/internal/staffindex"
	"compliance-backend/internal/users"
)

const sessionSweepInterval = 5 * time.Minute

// App holds shared dependencies and the HTTP router built from them.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	OrganizationsRepo organizations.Repo
	UsersRepo         users.Repo
	FoldersRepo       folders.Repo
	DocumentsRepo     documents.Repo
	Sessions          sessions.Store
	StaffIndex        *staffindex.Index

	UsersService      *users.Service
	FoldersService    *folders.Service
	DocumentsService  *documents.Service
	ComplianceService *compliance.Service
}

// Overrides replaces external integrations, mainly for tests.
type Overrides struct {
	Extractor extract.Extractor
	Grader    llm.Grader
	Queue     queue.Client
	Store     object.ObjectStore
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(context.Background(), cfg, Overrides{})
}

// BuildWith is Build with explicit integrations taking precedence over cfg.
func BuildWith(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := ov.Store
	if store == nil {
		if store, err = buildStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	sessionStore, err := buildSessions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient := ov.Queue
	if queueClient == nil {
		if queueClient, err = buildQueue(ctx, cfg); err != nil {
			return nil, err
		}
	}

	extractor := ov.Extractor
	if extractor == nil {
		if extractor, err = buildExtractor(cfg); err != nil {
			return nil, err
		}
	}

	grader := ov.Grader
	if grader == nil {
		if grader, err = buildGrader(cfg); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		Sessions: sessionStore,
	}
	buildServices(app, extractor, grader)

	var debug *debugapi.Handler
	if cfg.IsDevLike() {
		debug = &debugapi.Handler{
			Orgs:      app.OrganizationsRepo,
			Users:     app.UsersRepo,
			Folders:   app.FoldersRepo,
			Documents: app.DocumentsRepo,
			Sessions:  resetterOf(sessionStore),
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Resolver:          app.UsersService,
		Health:            health.NewService(app.DB),
		UserHandler:       users.NewHandler(app.UsersService),
		FolderHandler:     folders.NewHandler(app.FoldersService),
		DocumentHandler:   documents.NewHandler(app.DocumentsService, cfg.MaxUploadBytes),
		ComplianceHandler: compliance.NewHandler(app.ComplianceService),
		DashboardHandler:  dashboard.NewHandler(),
		DebugHandler:      debug,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildSessions(ctx context.Context, cfg config.Config) (sessions.Store, error) {
	if cfg.SessionStore == "redis" {
		client, err := sessions.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return sessions.NewRedisStore(client, cfg.SessionTTL), nil
	}
	store := sessions.NewMemoryStore(cfg.SessionTTL, nil)
	store.StartJanitor(ctx, sessionSweepInterval)
	return store, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	switch {
	case cfg.SQSQueueURL != "":
		return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
	case cfg.ExtractionNodeURL != "":
		return queue.NewHTTPClient(cfg.ExtractionNodeURL), nil
	default:
		return queue.Noop{}, nil
	}
}

func buildExtractor(cfg config.Config) (extract.Extractor, error) {
	if cfg.ExtractProvider == "local" {
		return extract.PDFExtractor{}, nil
	}
	if strings.TrimSpace(cfg.ExtractAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.extractor_fallback", map[string]any{"reason": "VISION_AGENT_API_KEY empty"})
			return extract.PDFExtractor{}, nil
		}
		return nil, fmt.Errorf("VISION_AGENT_API_KEY is required for EXTRACT_PROVIDER=landingai")
	}
	return extract.NewLandingAIClient(cfg.ExtractURL, cfg.ExtractAPIKey, cfg.ExtractTimeout)
}

func buildGrader(cfg config.Config) (llm.Grader, error) {
	if cfg.LLMProvider == "none" {
		return llm.PlaceholderGrader{}, nil
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider})
			return llm.PlaceholderGrader{}, nil
		}
		return nil, fmt.Errorf("api key is required for LLM_PROVIDER=%s", cfg.LLMProvider)
	}

	baseURL := cfg.LLMBaseURL
	if baseURL == "" && cfg.LLMProvider == "openai" {
		baseURL = "https://api.openai.com/v1"
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: baseURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client), nil
}

func buildServices(app *App, extractor extract.Extractor, grader llm.Grader) {
	if app.DB != nil {
		app.OrganizationsRepo = &organizations.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.FoldersRepo = &folders.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
	} else {
		app.OrganizationsRepo = organizations.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.FoldersRepo = folders.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
	}

	app.StaffIndex = staffindex.New(app.Store)
	app.FoldersService = folders.NewService(app.FoldersRepo)
	app.UsersService = &users.Service{
		Repo:     app.UsersRepo,
		Orgs:     app.OrganizationsRepo,
		Folders:  app.FoldersRepo,
		Sessions: app.Sessions,
		Index:    app.StaffIndex,
	}
	app.DocumentsService = &documents.Service{
		Repo:      app.DocumentsRepo,
		Folders:   app.FoldersRepo,
		Store:     app.Store,
		Extractor: extractor,
		Grader:    grader,
		Queue:     app.Queue,
		TmpDir:    app.Config.UploadTmpDir,
	}
	app.ComplianceService = &compliance.Service{
		Folders:   app.FoldersService,
		Users:     app.UsersRepo,
		Documents: app.DocumentsRepo,
	}
}

func resetterOf(store sessions.Store) debugapi.Resetter {
	if r, ok := store.(debugapi.Resetter); ok {
		return r
	}
	return nil
}
