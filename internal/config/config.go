package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	AppName  string
	HTTPPort string

	DatabaseURL string

	JWTIssuer      string
	JWTAudience    string
	JWTSecret      string
	AuthTokenTTL   time.Duration
	AuthBcryptCost int

	AuthEmailCodeTTL time.Duration
	AuthResetCodeTTL time.Duration
	AuthExposeCodes  bool

	AuthAbuseProtectionEnabled bool
	AuthAbuseFreeAttempts      int
	AuthAbuseBaseDelay         time.Duration
	AuthAbuseMultiplier        float64
	AuthAbuseMaxDelay          time.Duration
	AuthAbuseResetWindow       time.Duration

	AuthGoogleEnabled  bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	StateSigningSecret string

	MailProvider        string
	ResendAPIKey        string
	ResendBaseURL       string
	MailFromEmail       string
	MailFromName        string
	MailMaxInFlight     int
	MailSendTimeout     time.Duration
	MailRecipientLimit  int
	MailRecipientWindow time.Duration

	CORSAllowedOrigins  []string
	HTTPTrustedProxies  []string
	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	StorageEnabled   bool
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StorageURLTTL    time.Duration

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownMailDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	googleClientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	googleEnabled := getEnvBool("AUTH_GOOGLE_ENABLED", false)
	if _, explicitlySet := os.LookupEnv("AUTH_GOOGLE_ENABLED"); !explicitlySet && googleClientID != "" && googleClientSecret != "" {
		googleEnabled = true
	}

	cfg := &Config{
		Env:                        env,
		AppName:                    getEnv("APP_NAME", "Simple Debt Tracker"),
		HTTPPort:                   getEnv("HTTP_PORT", "8080"),
		DatabaseURL:                os.Getenv("DATABASE_URL"),
		JWTIssuer:                  getEnv("AUTH_JWT_ISSUER", "debt-ledger-service"),
		JWTAudience:                getEnv("AUTH_JWT_AUDIENCE", "debt-ledger-service-api"),
		JWTSecret:                  os.Getenv("AUTH_JWT_SECRET"),
		AuthBcryptCost:             getEnvInt("AUTH_BCRYPT_COST", 10),
		AuthExposeCodes:            getEnvBool("AUTH_EXPOSE_CODES", false),
		AuthAbuseProtectionEnabled: getEnvBool("AUTH_ABUSE_PROTECTION_ENABLED", true),
		AuthAbuseFreeAttempts:      getEnvInt("AUTH_ABUSE_FREE_ATTEMPTS", 5),
		AuthAbuseMultiplier:        getEnvFloat("AUTH_ABUSE_MULTIPLIER", 2.0),
		AuthGoogleEnabled:          googleEnabled,
		GoogleClientID:             googleClientID,
		GoogleClientSecret:         googleClientSecret,
		GoogleRedirectURL:          getEnv("GOOGLE_OAUTH_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		StateSigningSecret:         os.Getenv("OAUTH_STATE_SECRET"),
		MailProvider:               strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		ResendAPIKey:               os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:              getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		MailFromEmail:              getEnv("MAIL_FROM_EMAIL", "onboarding@resend.dev"),
		MailFromName:               getEnv("MAIL_FROM_NAME", "Simple Debt Tracker"),
		MailMaxInFlight:            getEnvInt("MAIL_MAX_IN_FLIGHT", 8),
		MailRecipientLimit:         getEnvInt("MAIL_RECIPIENT_LIMIT", 3),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPTrustedProxies:         splitCSV(os.Getenv("HTTP_TRUSTED_PROXIES")),
		AuthRateLimitPerMin:        getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:         getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		RedisEnabled:               getEnvBool("REDIS_ENABLED", false),
		RedisAddr:                  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                    getEnvInt("REDIS_DB", 0),
		RedisPrefix:                getEnv("REDIS_PREFIX", "debtledger"),
		StorageEnabled:             getEnvBool("STORAGE_ENABLED", false),
		StorageEndpoint:            getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:           os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:           os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:              getEnv("STORAGE_BUCKET", "debt-statements"),
		StorageUseSSL:              getEnvBool("STORAGE_USE_SSL", false),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "debt-ledger-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"AUTH_TOKEN_TTL", "168h", &cfg.AuthTokenTTL},
		{"AUTH_EMAIL_CODE_TTL", "10m", &cfg.AuthEmailCodeTTL},
		{"AUTH_RESET_CODE_TTL", "15m", &cfg.AuthResetCodeTTL},
		{"AUTH_ABUSE_BASE_DELAY", "2s", &cfg.AuthAbuseBaseDelay},
		{"AUTH_ABUSE_MAX_DELAY", "5m", &cfg.AuthAbuseMaxDelay},
		{"AUTH_ABUSE_RESET_WINDOW", "30m", &cfg.AuthAbuseResetWindow},
		{"MAIL_SEND_TIMEOUT", "10s", &cfg.MailSendTimeout},
		{"MAIL_RECIPIENT_WINDOW", "5m", &cfg.MailRecipientWindow},
		{"STORAGE_URL_TTL", "15m", &cfg.StorageURLTTL},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_MAIL_DRAIN_TIMEOUT", "5s", &cfg.ShutdownMailDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "AUTH_JWT_SECRET must be at least 32 chars")
	}
	if c.AuthTokenTTL <= 0 || c.AuthTokenTTL > (30*24*time.Hour) {
		errs = append(errs, "AUTH_TOKEN_TTL must be between 1s and 30d")
	}
	for _, p := range c.HTTPTrustedProxies {
		if _, err := netip.ParsePrefix(p); err != nil {
			if _, err := netip.ParseAddr(p); err != nil {
				errs = append(errs, fmt.Sprintf("HTTP_TRUSTED_PROXIES entry %q is not an IP or CIDR", p))
			}
		}
	}
	if c.AuthBcryptCost < 4 || c.AuthBcryptCost > 31 {
		errs = append(errs, "AUTH_BCRYPT_COST must be between 4 and 31")
	}
	if c.AuthEmailCodeTTL <= 0 || c.AuthEmailCodeTTL > 24*time.Hour {
		errs = append(errs, "AUTH_EMAIL_CODE_TTL must be between 1s and 24h")
	}
	if c.AuthResetCodeTTL <= 0 || c.AuthResetCodeTTL > 24*time.Hour {
		errs = append(errs, "AUTH_RESET_CODE_TTL must be between 1s and 24h")
	}
	if c.AuthAbuseProtectionEnabled {
		if c.AuthAbuseFreeAttempts < 0 {
			errs = append(errs, "AUTH_ABUSE_FREE_ATTEMPTS must be >= 0")
		}
		if c.AuthAbuseMultiplier < 1 {
			errs = append(errs, "AUTH_ABUSE_MULTIPLIER must be >= 1")
		}
		if c.AuthAbuseBaseDelay <= 0 || c.AuthAbuseMaxDelay < c.AuthAbuseBaseDelay {
			errs = append(errs, "AUTH_ABUSE_BASE_DELAY must be > 0 and <= AUTH_ABUSE_MAX_DELAY")
		}
	}
	if c.AuthGoogleEnabled {
		if c.GoogleClientID == "" {
			errs = append(errs, "GOOGLE_OAUTH_CLIENT_ID is required when AUTH_GOOGLE_ENABLED=true")
		}
		if c.GoogleClientSecret == "" {
			errs = append(errs, "GOOGLE_OAUTH_CLIENT_SECRET is required when AUTH_GOOGLE_ENABLED=true")
		}
		if len(c.StateSigningSecret) < 16 {
			errs = append(errs, "OAUTH_STATE_SECRET must be at least 16 chars")
		}
	}
	switch c.MailProvider {
	case "log":
	case "resend":
		if c.ResendAPIKey == "" {
			errs = append(errs, "RESEND_API_KEY is required when MAIL_PROVIDER=resend")
		}
	default:
		errs = append(errs, "MAIL_PROVIDER must be one of log, resend")
	}
	if c.MailMaxInFlight <= 0 {
		errs = append(errs, "MAIL_MAX_IN_FLIGHT must be > 0")
	}
	if c.MailSendTimeout <= 0 {
		errs = append(errs, "MAIL_SEND_TIMEOUT must be > 0")
	}
	if c.MailRecipientLimit <= 0 || c.MailRecipientWindow <= 0 {
		errs = append(errs, "MAIL_RECIPIENT_LIMIT and MAIL_RECIPIENT_WINDOW must be > 0")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if c.StorageEnabled {
		if c.StorageEndpoint == "" || c.StorageBucket == "" {
			errs = append(errs, "STORAGE_ENDPOINT and STORAGE_BUCKET are required when STORAGE_ENABLED=true")
		}
		if c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			errs = append(errs, "STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENABLED=true")
		}
		if c.StorageURLTTL <= 0 || c.StorageURLTTL > 7*24*time.Hour {
			errs = append(errs, "STORAGE_URL_TTL must be between 1s and 7d")
		}
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if c.ShutdownMailDrainTimeout <= 0 || c.ShutdownMailDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_MAIL_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if c.ShutdownObservabilityTimeout <= 0 || c.ShutdownObservabilityTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_OBSERVABILITY_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.IsProduction() {
		if c.AuthExposeCodes {
			errs = append(errs, "AUTH_EXPOSE_CODES must be false in production")
		}
		if c.MailProvider != "resend" {
			errs = append(errs, "MAIL_PROVIDER must be resend in production")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
