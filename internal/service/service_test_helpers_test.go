package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
)

func newServiceDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.VerificationCode{},
		&domain.OAuthAccount{},
		&domain.Contact{},
		&domain.Debt{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []CodeNotification
}

func (n *recordingNotifier) NotifyCode(_ context.Context, c CodeNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, c)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *recordingNotifier) last(t *testing.T) CodeNotification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatal("expected a notification")
	}
	return n.sent[len(n.sent)-1]
}

type authFixture struct {
	cfg      *config.Config
	db       *gorm.DB
	users    repository.UserRepository
	codes    repository.VerificationCodeRepository
	ledger   *CodeLedger
	tokens   *security.JWTManager
	notifier *recordingNotifier
	guard    *ratelimit.MemoryCooldownGuard
	auth     *AuthService
	now      time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	fx := &authFixture{
		cfg: &config.Config{
			AppName:          "Debt Tracker",
			AuthExposeCodes:  true,
			AuthEmailCodeTTL: 10 * time.Minute,
			AuthResetCodeTTL: 15 * time.Minute,
		},
		db:       newServiceDBForTest(t),
		notifier: &recordingNotifier{},
		now:      time.Now().UTC(),
	}
	fx.users = repository.NewUserRepository(fx.db)
	fx.codes = repository.NewVerificationCodeRepository(fx.db)
	gen := security.NewCodeGenerator(fx.cfg.AuthEmailCodeTTL, fx.cfg.AuthResetCodeTTL).
		WithClock(func() time.Time { return fx.now })
	fx.ledger = NewCodeLedger(fx.codes, gen)
	fx.tokens = security.NewJWTManager("debt-ledger", "debt-ledger-api", "abcdefghijklmnopqrstuvwxyz123456", time.Hour)
	fx.guard = ratelimit.NewMemoryCooldownGuard(ratelimit.CooldownPolicy{
		FreeAttempts: 5,
		BaseDelay:    time.Second,
		Multiplier:   2,
		MaxDelay:     time.Minute,
		ResetWindow:  time.Hour,
	})
	fx.auth = NewAuthService(
		fx.cfg,
		fx.users,
		fx.ledger,
		security.NewPasswordHasher(bcrypt.MinCost),
		fx.tokens,
		fx.notifier,
		fx.guard,
		nil,
		nil,
	)
	return fx
}

// registerVerified creates a user and completes email verification.
func (fx *authFixture) registerVerified(t *testing.T, email, password string) *domain.User {
	t.Helper()
	ctx := context.Background()
	res, err := fx.auth.Register(ctx, RegisterInput{Email: email, Password: password, FullName: "Test User"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	user, err := fx.auth.VerifyEmail(ctx, email, res.Code)
	if err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
	return user
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
