package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/app"
	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/database"
	"github.com/sandeepkv93/debt-ledger-service/internal/health"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/handler"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/middleware"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/router"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideLimiter,
	provideObjectStore,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewOAuthRepository,
	repository.NewVerificationCodeRepository,
	repository.NewContactRepository,
	repository.NewDebtRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
	provideCodeGenerator,
)

var ServiceSet = wire.NewSet(
	service.NewCodeLedger,
	provideMailer,
	provideNotificationDispatcher,
	provideCooldownGuard,
	service.NewGoogleOAuthProvider,
	wire.Bind(new(service.OAuthProvider), new(*service.GoogleOAuthProvider)),
	wire.Bind(new(service.CodeNotifier), new(*service.NotificationDispatcher)),
	service.NewOAuthService,
	service.NewAuthService,
	service.NewContactService,
	service.NewDebtService,
	provideStatementService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.ContactServiceInterface), new(*service.ContactService)),
	wire.Bind(new(service.DebtServiceInterface), new(*service.DebtService)),
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	handler.NewContactHandler,
	handler.NewDebtHandler,
	provideAPIRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// AuthRateLimiter and APIRateLimiter keep the two router limiters apart in
// the injector graph.
type (
	AuthRateLimiter router.RateLimiterFunc
	APIRateLimiter  router.RateLimiterFunc
)

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) DB() *gorm.DB { return m.db }

func (m *MigrationRunner) Up() error { return database.Migrate(m.db) }

func (m *MigrationRunner) Status() ([]database.TableStatus, error) { return database.Status(m.db) }

func (m *MigrationRunner) Plan() ([]string, error) { return database.Plan(m.db) }

func (m *MigrationRunner) Close() error { return database.Close(m.db) }

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, cfg.RedisPrefix, logger)
	return client
}

// provideLimiter backs the HTTP limiters and the per-recipient mail throttle.
// Keys are namespaced per scope, so one limiter serves all of them.
func provideLimiter(cfg *config.Config, redisClient redis.UniversalClient) ratelimit.Limiter {
	if redisClient != nil {
		return ratelimit.NewRedisLimiter(redisClient, cfg.RedisPrefix+":rl")
	}
	return ratelimit.NewMemoryLimiter()
}

func provideObjectStore(cfg *config.Config) (*service.MinIOObjectStore, error) {
	if !cfg.StorageEnabled {
		return nil, nil
	}
	return service.NewMinIOObjectStore(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageBucket, cfg.StorageUseSSL)
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, store *service.MinIOObjectStore) *health.ProbeRunner {
	checkers := []health.Checker{
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
	}
	if store != nil {
		checkers = append(checkers, health.NewObjectStorageChecker(store.Client(), store.Bucket()))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, checkers...)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.AuthTokenTTL)
}

func providePasswordHasher(cfg *config.Config) *security.PasswordHasher {
	return security.NewPasswordHasher(cfg.AuthBcryptCost)
}

func provideCodeGenerator(cfg *config.Config) *security.CodeGenerator {
	return security.NewCodeGenerator(cfg.AuthEmailCodeTTL, cfg.AuthResetCodeTTL)
}

func provideMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	if cfg.MailProvider == "resend" {
		client := &http.Client{Timeout: cfg.MailSendTimeout}
		return service.NewResendMailer(client, cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	}
	return service.NewLogMailer(logger, cfg.AuthExposeCodes)
}

func provideNotificationDispatcher(cfg *config.Config, mailer service.Mailer, limiter ratelimit.Limiter, logger *slog.Logger) *service.NotificationDispatcher {
	return service.NewNotificationDispatcher(mailer, limiter, service.DispatcherOptions{
		AppName:         cfg.AppName,
		MaxInFlight:     int64(cfg.MailMaxInFlight),
		SendTimeout:     cfg.MailSendTimeout,
		RecipientLimit:  cfg.MailRecipientLimit,
		RecipientWindow: cfg.MailRecipientWindow,
		Provider:        cfg.MailProvider,
	}, logger)
}

func provideCooldownGuard(cfg *config.Config, redisClient redis.UniversalClient) ratelimit.CooldownGuard {
	if !cfg.AuthAbuseProtectionEnabled {
		return ratelimit.NoopCooldownGuard{}
	}
	policy := ratelimit.CooldownPolicy{
		FreeAttempts: cfg.AuthAbuseFreeAttempts,
		BaseDelay:    cfg.AuthAbuseBaseDelay,
		Multiplier:   cfg.AuthAbuseMultiplier,
		MaxDelay:     cfg.AuthAbuseMaxDelay,
		ResetWindow:  cfg.AuthAbuseResetWindow,
	}
	if redisClient != nil {
		return ratelimit.NewRedisCooldownGuard(redisClient, cfg.RedisPrefix+":abuse", policy)
	}
	return ratelimit.NewMemoryCooldownGuard(policy)
}

func provideStatementService(cfg *config.Config, debts repository.DebtRepository, store *service.MinIOObjectStore) service.StatementServiceInterface {
	if store == nil {
		return nil
	}
	return service.NewStatementService(debts, store, cfg.StorageURLTTL)
}

func provideAuthHandler(authSvc service.AuthServiceInterface, cfg *config.Config) *handler.AuthHandler {
	return handler.NewAuthHandler(authSvc, cfg.StateSigningSecret, cfg.IsProduction())
}

func provideAPIRateLimiter(cfg *config.Config, limiter ratelimit.Limiter, jwt *security.JWTManager) APIRateLimiter {
	return APIRateLimiter(middleware.NewRateLimiter(limiter, cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, "api").
		WithKeyFunc(middleware.SubjectOrIPKeyFunc(jwt)).
		Middleware())
}

func provideAuthRateLimiter(cfg *config.Config, limiter ratelimit.Limiter) AuthRateLimiter {
	return AuthRateLimiter(middleware.NewRateLimiter(limiter, cfg.AuthRateLimitPerMin, time.Minute, middleware.FailClosed, "auth").Middleware())
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
	debtHandler *handler.DebtHandler,
	jwt *security.JWTManager,
	authSvc service.AuthServiceInterface,
	apiRateLimiter APIRateLimiter,
	authRateLimiter AuthRateLimiter,
	readiness *health.ProbeRunner,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		ContactHandler:   contactHandler,
		DebtHandler:      debtHandler,
		JWTManager:       jwt,
		Profiles:         authSvc,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		TrustedProxies:   cfg.HTTPTrustedProxies,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
		AuthRateLimiter:  router.RateLimiterFunc(authRateLimiter),
		APIRateLimiter:   router.RateLimiterFunc(apiRateLimiter),
		Readiness:        readiness,
		Logger:           logger,
		EnableOTelHTTP:   cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	dispatcher *service.NotificationDispatcher,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *app.App {
	return app.New(cfg, logger, server, runtime, dispatcher, db, redisClient)
}
