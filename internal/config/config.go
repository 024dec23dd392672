package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type providerDefaults struct {
	baseURL   string
	model     string
	keyEnvVar string
}

var providers = map[string]providerDefaults{
	ProviderOpenAI:     {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini", keyEnvVar: "OPENAI_API_KEY"},
	ProviderGroq:       {baseURL: "https://api.groq.com/openai/v1", model: "llama-3.3-70b-versatile", keyEnvVar: "GROQ_API_KEY"},
	ProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", model: "openai/gpt-4o-mini", keyEnvVar: "OPENROUTER_API_KEY"},
	ProviderGemini:     {baseURL: "https://generativelanguage.googleapis.com/v1beta", model: "gemini-1.5-flash", keyEnvVar: "GEMINI_API_KEY"},
}

type Config struct {
	Env      string
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
	Insights InsightsConfig
}

// AppConfig holds settings shared by every component. Location decides which
// calendar day counts as today.
type AppConfig struct {
	Timezone string
	Location *time.Location
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type AIConfig struct {
	Provider             string
	APIKey               string
	BaseURL              string
	Model                string
	Timeout              time.Duration
	RateLimitPerMinute   int
	RateLimitBurst       int
	MaxOutputTokens      int
	MaxConcurrent        int
	MaxToolRounds        int
	InsightDraftsEnabled bool
}

type InsightsConfig struct {
	Enabled    bool
	Schedule   string
	RunTimeout time.Duration
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	timezone := getEnv("APP_TIMEZONE", "UTC")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return cfg, fmt.Errorf("APP_TIMEZONE must be an IANA time zone: %w", err)
	}

	cfg.App = AppConfig{
		Timezone: timezone,
		Location: location,
	}

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "household"),
		Password:        getEnv("DB_PASSWORD", "household"),
		Name:            getEnv("DB_NAME", "household_assistant"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "household-assistant"),
		AccessTokenTTL:     accessTTL,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 20*time.Second)
	if err != nil {
		return cfg, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	aiMaxConcurrent, err := parseIntEnv("AI_MAX_CONCURRENT", 4)
	if err != nil {
		return cfg, err
	}

	aiMaxToolRounds, err := parseIntEnv("AI_MAX_TOOL_ROUNDS", 5)
	if err != nil {
		return cfg, err
	}

	insightDrafts, err := parseBoolEnv("AI_INSIGHT_DRAFTS_ENABLED", true)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini))
	defaults := providers[aiProvider]

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && defaults.keyEnvVar != "" {
		aiAPIKey = getEnv(defaults.keyEnvVar, "")
	}

	cfg.AI = AIConfig{
		Provider:             aiProvider,
		APIKey:               aiAPIKey,
		BaseURL:              getEnv("AI_BASE_URL", defaults.baseURL),
		Model:                getEnv("AI_MODEL", defaults.model),
		Timeout:              aiTimeout,
		RateLimitPerMinute:   aiRateLimitPerMinute,
		RateLimitBurst:       aiRateLimitBurst,
		MaxOutputTokens:      aiMaxOutputTokens,
		MaxConcurrent:        aiMaxConcurrent,
		MaxToolRounds:        aiMaxToolRounds,
		InsightDraftsEnabled: insightDrafts,
	}

	insightsEnabled, err := parseBoolEnv("INSIGHTS_ENABLED", true)
	if err != nil {
		return cfg, err
	}

	insightsRunTimeout, err := parseDurationEnv("INSIGHTS_RUN_TIMEOUT", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Insights = InsightsConfig{
		Enabled:    insightsEnabled,
		Schedule:   getEnv("INSIGHTS_SCHEDULE", "0 6 * * *"),
		RunTimeout: insightsRunTimeout,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	if c.Auth.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Auth.RateLimitBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.AI.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.AI.RateLimitBurst <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if _, ok := providers[c.AI.Provider]; !ok {
		return fmt.Errorf("AI_PROVIDER must be one of openai, groq, openrouter, gemini")
	}

	if c.AI.BaseURL == "" {
		return fmt.Errorf("AI_BASE_URL is required")
	}

	if c.Insights.Enabled {
		if _, err := cron.ParseStandard(c.Insights.Schedule); err != nil {
			return fmt.Errorf("INSIGHTS_SCHEDULE must be a cron expression: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
