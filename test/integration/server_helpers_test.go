package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/database"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/handler"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/router"
	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

var mailedCode = regexp.MustCompile(`is (\d{6})\.`)

// captureMailer records every message and hands out the last code mailed to
// an address.
type captureMailer struct {
	mu   sync.Mutex
	sent []service.Message
}

func (m *captureMailer) Send(_ context.Context, msg service.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) lastCode(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To != to {
			continue
		}
		if match := mailedCode.FindStringSubmatch(m.sent[i].Text); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no code mailed to %s", to)
	return ""
}

type ledgerTestServer struct {
	baseURL    string
	client     *http.Client
	db         *gorm.DB
	mailer     *captureMailer
	dispatcher *service.NotificationDispatcher
}

type ledgerServerOptions struct {
	cfgOverride func(cfg *config.Config)
	db          *gorm.DB
	store       service.ObjectStore
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                        "test",
		AppName:                    "Debt Ledger",
		JWTIssuer:                  "debt-ledger-test",
		JWTAudience:                "debt-ledger-api",
		JWTSecret:                  "integration-secret-0123456789abcdef",
		AuthTokenTTL:               15 * time.Minute,
		AuthBcryptCost:             4,
		AuthEmailCodeTTL:           10 * time.Minute,
		AuthResetCodeTTL:           10 * time.Minute,
		AuthAbuseProtectionEnabled: true,
		AuthAbuseFreeAttempts:      5,
		AuthAbuseBaseDelay:         time.Second,
		AuthAbuseMultiplier:        2,
		AuthAbuseMaxDelay:          time.Minute,
		AuthAbuseResetWindow:       30 * time.Minute,
		StateSigningSecret:         "state-secret-0123456789abcdef",
		MailProvider:               "capture",
		AuthRateLimitPerMin:        1000,
		APIRateLimitPerMin:         1000,
		StorageURLTTL:              5 * time.Minute,
	}
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenDialector(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newLedgerTestServer(t *testing.T, opts ledgerServerOptions) *ledgerTestServer {
	t.Helper()
	cfg := testConfig()
	if opts.cfgOverride != nil {
		opts.cfgOverride(cfg)
	}
	db := opts.db
	if db == nil {
		db = newSQLiteDB(t)
	}
	logger := slog.New(slog.DiscardHandler)

	users := repository.NewUserRepository(db)
	contacts := repository.NewContactRepository(db)
	debts := repository.NewDebtRepository(db)
	codes := repository.NewVerificationCodeRepository(db)

	jwt := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.AuthTokenTTL)
	mailer := &captureMailer{}
	dispatcher := service.NewNotificationDispatcher(mailer, nil, service.DispatcherOptions{AppName: cfg.AppName, Provider: "capture"}, logger)
	authSvc := service.NewAuthService(
		cfg,
		users,
		service.NewCodeLedger(codes, security.NewCodeGenerator(cfg.AuthEmailCodeTTL, cfg.AuthResetCodeTTL)),
		security.NewPasswordHasher(cfg.AuthBcryptCost),
		jwt,
		dispatcher,
		ratelimit.NewMemoryCooldownGuard(ratelimit.CooldownPolicy{
			FreeAttempts: cfg.AuthAbuseFreeAttempts,
			BaseDelay:    cfg.AuthAbuseBaseDelay,
			Multiplier:   cfg.AuthAbuseMultiplier,
			MaxDelay:     cfg.AuthAbuseMaxDelay,
			ResetWindow:  cfg.AuthAbuseResetWindow,
		}),
		nil,
		logger,
	)
	var statements service.StatementServiceInterface
	if opts.store != nil {
		statements = service.NewStatementService(debts, opts.store, cfg.StorageURLTTL)
	}

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, cfg.StateSigningSecret, false),
		ContactHandler:   handler.NewContactHandler(service.NewContactService(contacts, debts)),
		DebtHandler:      handler.NewDebtHandler(service.NewDebtService(debts, contacts), statements),
		JWTManager:       jwt,
		Profiles:         authSvc,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
		Logger:           logger,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &ledgerTestServer{baseURL: srv.URL, client: srv.Client(), db: db, mailer: mailer, dispatcher: dispatcher}
}

// drainMail waits for background deliveries so captured codes are visible.
func (s *ledgerTestServer) drainMail(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.dispatcher.Drain(ctx); err != nil {
		t.Fatalf("drain mail: %v", err)
	}
}

func (s *ledgerTestServer) do(t *testing.T, method, path string, body any, token string) (*http.Response, apiEnvelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp, env
}

func decodeInto[T any](t *testing.T, env apiEnvelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
	return out
}

// registerVerifiedUser walks register, verify and login and returns a token.
func (s *ledgerTestServer) registerVerifiedUser(t *testing.T, email, password string) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": email, "password": password, "fullname": "Test User",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status=%d body=%+v", email, resp.StatusCode, env)
	}
	s.drainMail(t)
	resp, env = s.do(t, http.MethodPost, "/api/v1/auth/verify-email", map[string]string{
		"email": email, "code": s.mailer.lastCode(t, email),
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify %s: status=%d body=%+v", email, resp.StatusCode, env)
	}
	return s.login(t, email, password)
}

func (s *ledgerTestServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%+v", email, resp.StatusCode, env)
	}
	return decodeInto[service.LoginResult](t, env).AccessToken
}
