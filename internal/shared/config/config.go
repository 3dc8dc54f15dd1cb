package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"compliance-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	UploadTmpDir   string
	MaxUploadBytes int64

	SessionStore  string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LLMProvider  string
	LLMModel     string
	LLMBaseURL   string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	GeminiAPIKey string
	OpenAIAPIKey string

	ExtractProvider string
	ExtractURL      string
	ExtractAPIKey   string
	ExtractTimeout  time.Duration

	SQSQueueURL       string
	ExtractionNodeURL string

	LoginRatePerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	if env == "production" && dbURL == "" {
		telemetry.Error("config.invalid", map[string]any{"error": "DATABASE_URL is required in production"})
	}

	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),

		UploadTmpDir:   v.GetString("UPLOAD_TMP_DIR"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		SessionStore:  normalizeSessionStore(v.GetString("SESSION_STORE")),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		LLMProvider:  normalizeLLMProvider(v.GetString("LLM_PROVIDER")),
		LLMModel:     v.GetString("LLM_MODEL"),
		LLMBaseURL:   v.GetString("LLM_BASE_URL"),
		LLMTimeout:   v.GetDuration("LLM_TIMEOUT"),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),

		ExtractProvider: normalizeExtractProvider(v.GetString("EXTRACT_PROVIDER")),
		ExtractURL:      v.GetString("EXTRACT_URL"),
		ExtractAPIKey:   v.GetString("VISION_AGENT_API_KEY"),
		ExtractTimeout:  v.GetDuration("EXTRACT_TIMEOUT"),

		SQSQueueURL:       strings.TrimSpace(v.GetString("SQS_QUEUE_URL")),
		ExtractionNodeURL: strings.TrimSpace(v.GetString("EXTRACTION_NODE_URL")),

		LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
	}

	switch cfg.LLMProvider {
	case "gemini":
		cfg.LLMAPIKey = cfg.GeminiAPIKey
	case "openai":
		cfg.LLMAPIKey = cfg.OpenAIAPIKey
	}
	return cfg
}

// IsDevLike reports whether env allows in-memory fallbacks and debug routes.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("S3_BUCKET", "carelumi-data")
	v.SetDefault("UPLOAD_TMP_DIR", "./data/tmp")
	v.SetDefault("MAX_UPLOAD_BYTES", int64(10<<20))
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM_TIMEOUT", 120*time.Second)
	v.SetDefault("EXTRACT_PROVIDER", "landingai")
	v.SetDefault("EXTRACT_URL", "https://api.va.landing.ai/v1/tools/agentic-document-analysis")
	v.SetDefault("EXTRACT_TIMEOUT", 180*time.Second)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 20)
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// Missing files are expected outside local development.
		_ = godotenv.Load(path)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

func normalizeLLMProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "placeholder":
		return "none"
	default:
		return "gemini"
	}
}

func normalizeExtractProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local", "pdf":
		return "local"
	default:
		return "landingai"
	}
}
