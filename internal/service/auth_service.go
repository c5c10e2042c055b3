package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
)

const (
	minPasswordLen  = 6
	maxPasswordLen  = 128
	maxFullNameLen  = 100
	tokenTypeBearer = "bearer"
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type RegisterResult struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Code   string `json:"verification_code,omitempty"`
}

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// CodeResult acknowledges a code request. Code is only set when codes are
// exposed for development.
type CodeResult struct {
	Email   string             `json:"email"`
	Purpose domain.CodePurpose `json:"purpose"`
	Code    string             `json:"code,omitempty"`
}

type clientIPKey struct{}

// WithClientIP attaches the caller address used by the auth cooldown guard.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

type AuthService struct {
	cfg      *config.Config
	users    repository.UserRepository
	ledger   *CodeLedger
	hasher   *security.PasswordHasher
	tokens   *security.JWTManager
	notifier CodeNotifier
	guard    ratelimit.CooldownGuard
	oauth    *OAuthService
	logger   *slog.Logger
}

func NewAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	ledger *CodeLedger,
	hasher *security.PasswordHasher,
	tokens *security.JWTManager,
	notifier CodeNotifier,
	guard ratelimit.CooldownGuard,
	oauth *OAuthService,
	logger *slog.Logger,
) *AuthService {
	if guard == nil {
		guard = ratelimit.NoopCooldownGuard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		cfg:      cfg,
		users:    users,
		ledger:   ledger,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		guard:    guard,
		oauth:    oauth,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if n := utf8.RuneCountInString(fullName); n == 0 || n > maxFullNameLen {
		return nil, invalid("fullname", fmt.Sprintf("must be between 1 and %d characters", maxFullNameLen))
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Email: email, FullName: fullName, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			observability.RecordAuthFlowEvent(ctx, "register", "duplicate")
			return nil, ErrDuplicateEmail
		}
		observability.RecordAuthFlowEvent(ctx, "register", "error")
		return nil, err
	}

	code, err := s.issueAndNotify(ctx, user, domain.CodePurposeEmailVerification)
	if err != nil {
		// Without a code the account could never be verified, and the row
		// would block a retry with ErrDuplicateEmail.
		if delErr := s.users.DeleteUnverified(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "register rollback failed", "user_id", user.ID, "error", delErr)
		}
		observability.RecordAuthFlowEvent(ctx, "register", "error")
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "register", "success")
	return &RegisterResult{UserID: user.ID, Email: email, Code: s.exposed(code)}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	subject := s.subject(ctx, ratelimit.ScopeVerify, email)
	if err := s.checkCooldown(ctx, subject); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		observability.RecordAuthFlowEvent(ctx, "verify_email", "already_verified")
		return nil, ErrAlreadyVerified
	}
	if err := s.ledger.Consume(ctx, email, domain.CodePurposeEmailVerification, code); err != nil {
		s.registerFailure(ctx, subject, err)
		observability.RecordAuthFlowEvent(ctx, "verify_email", "rejected")
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.users.MarkVerified(ctx, user.ID, now); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyVerified) {
			return nil, ErrAlreadyVerified
		}
		return nil, err
	}
	s.clearCooldown(ctx, subject)
	user.IsVerified = true
	user.VerifiedAt = &now
	observability.RecordAuthFlowEvent(ctx, "verify_email", "success")
	return user, nil
}

// Login checks verification before the password, so an unverified account
// reports ErrNotVerified whatever password was sent.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("", "email and password are required")
	}
	subject := s.subject(ctx, ratelimit.ScopeLogin, email)
	if err := s.checkCooldown(ctx, subject); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.registerFailure(ctx, subject, ErrInvalidCredentials)
			observability.RecordAuthFlowEvent(ctx, "login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsVerified {
		observability.RecordAuthFlowEvent(ctx, "login", "not_verified")
		return nil, ErrNotVerified
	}
	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.registerFailure(ctx, subject, ErrInvalidCredentials)
		observability.RecordAuthFlowEvent(ctx, "login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	s.clearCooldown(ctx, subject)
	res, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "login", "success")
	return res, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	return user, nil
}

// ForgotPassword answers the same way for known and unknown addresses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*CodeResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	res := &CodeResult{Email: email, Purpose: domain.CodePurposePasswordReset}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthFlowEvent(ctx, "forgot_password", "unknown_email")
			return res, nil
		}
		return nil, err
	}
	code, err := s.issueAndNotify(ctx, user, domain.CodePurposePasswordReset)
	if err != nil {
		return nil, err
	}
	res.Code = s.exposed(code)
	observability.RecordAuthFlowEvent(ctx, "forgot_password", "success")
	return res, nil
}

func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validateCode(code); err != nil {
		return err
	}
	subject := s.subject(ctx, ratelimit.ScopeReset, email)
	if err := s.checkCooldown(ctx, subject); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, email); err != nil {
		return err
	}
	if err := s.ledger.Check(ctx, email, domain.CodePurposePasswordReset, code); err != nil {
		s.registerFailure(ctx, subject, err)
		return err
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := validateCode(code); err != nil {
		return err
	}
	if err := validatePassword("new_password", newPassword); err != nil {
		return err
	}
	subject := s.subject(ctx, ratelimit.ScopeReset, email)
	if err := s.checkCooldown(ctx, subject); err != nil {
		return err
	}
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	// The code is checked before the password comparison so the unchanged
	// check cannot be used without a valid code.
	if err := s.ledger.Check(ctx, email, domain.CodePurposePasswordReset, code); err != nil {
		s.registerFailure(ctx, subject, err)
		observability.RecordAuthFlowEvent(ctx, "reset_password", "rejected")
		return err
	}
	same, err := s.hasher.Verify(user.PasswordHash, newPassword)
	if err != nil {
		return err
	}
	if same {
		return ErrPasswordUnchanged
	}
	if err := s.ledger.Consume(ctx, email, domain.CodePurposePasswordReset, code); err != nil {
		observability.RecordAuthFlowEvent(ctx, "reset_password", "rejected")
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.clearCooldown(ctx, subject)
	observability.RecordAuthFlowEvent(ctx, "reset_password", "success")
	return nil
}

func (s *AuthService) ResendCode(ctx context.Context, email string, purpose domain.CodePurpose) (*CodeResult, error) {
	switch purpose {
	case domain.CodePurposePasswordReset:
		return s.ForgotPassword(ctx, email)
	case domain.CodePurposeEmailVerification:
	default:
		return nil, invalid("purpose", "must be email_verification or password_reset")
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	code, err := s.issueAndNotify(ctx, user, purpose)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "resend_code", "success")
	return &CodeResult{Email: email, Purpose: purpose, Code: s.exposed(code)}, nil
}

func (s *AuthService) GoogleLoginURL(state string) (string, error) {
	if !s.googleEnabled() {
		return "", ErrGoogleAuthDisabled
	}
	return s.oauth.LoginURL(state), nil
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*LoginResult, error) {
	if !s.googleEnabled() {
		return nil, ErrGoogleAuthDisabled
	}
	user, err := s.oauth.HandleGoogleCallback(ctx, code)
	if err != nil {
		observability.RecordAuthFlowEvent(ctx, "google_login", "error")
		return nil, err
	}
	res, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthFlowEvent(ctx, "google_login", "success")
	return res, nil
}

func (s *AuthService) googleEnabled() bool {
	return s.oauth != nil && s.cfg.AuthGoogleEnabled
}

func (s *AuthService) issueToken(user *domain.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{AccessToken: token, TokenType: tokenTypeBearer, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) issueAndNotify(ctx context.Context, user *domain.User, purpose domain.CodePurpose) (string, error) {
	record, err := s.ledger.Issue(ctx, user.Email, purpose)
	if err != nil {
		return "", err
	}
	if s.notifier != nil {
		s.notifier.NotifyCode(ctx, CodeNotification{
			Email:    user.Email,
			FullName: user.FullName,
			Code:     record.Code,
			Purpose:  purpose,
			ValidFor: s.ledger.TTL(purpose),
		})
	}
	return record.Code, nil
}

func (s *AuthService) exposed(code string) string {
	if s.cfg.AuthExposeCodes {
		return code
	}
	return ""
}

func (s *AuthService) findUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) subject(ctx context.Context, scope ratelimit.Scope, email string) ratelimit.Subject {
	return ratelimit.Subject{Scope: scope, Identity: email, IP: clientIP(ctx)}
}

// checkCooldown fails open when the guard backend is unavailable.
func (s *AuthService) checkCooldown(ctx context.Context, subject ratelimit.Subject) error {
	remaining, err := s.guard.Remaining(ctx, subject)
	if err != nil {
		observability.RecordAuthAbuseGuardEvent(ctx, string(subject.Scope), "check", "backend_error")
		s.logger.WarnContext(ctx, "auth cooldown check failed", "scope", subject.Scope, "error", err)
		return nil
	}
	if remaining > 0 {
		observability.RecordAuthAbuseGuardEvent(ctx, string(subject.Scope), "check", "blocked")
		observability.RecordAuthAbuseCooldown(ctx, string(subject.Scope), remaining)
		return &ThrottledError{RetryAfter: remaining}
	}
	observability.RecordAuthAbuseGuardEvent(ctx, string(subject.Scope), "check", "allowed")
	return nil
}

func (s *AuthService) registerFailure(ctx context.Context, subject ratelimit.Subject, cause error) {
	if !countsAsFailure(cause) {
		return
	}
	delay, err := s.guard.Fail(ctx, subject)
	if err != nil {
		observability.RecordAuthAbuseGuardEvent(ctx, string(subject.Scope), "fail", "backend_error")
		s.logger.WarnContext(ctx, "auth cooldown update failed", "scope", subject.Scope, "error", err)
		return
	}
	observability.RecordAuthAbuseGuardEvent(ctx, string(subject.Scope), "fail", "recorded")
	if delay > 0 {
		observability.RecordAuthAbuseCooldown(ctx, string(subject.Scope), delay)
	}
}

func (s *AuthService) clearCooldown(ctx context.Context, subject ratelimit.Subject) {
	if err := s.guard.Clear(ctx, subject); err != nil {
		s.logger.WarnContext(ctx, "auth cooldown reset failed", "scope", subject.Scope, "error", err)
	}
}

func countsAsFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrCodeMismatch) ||
		errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrCodeExpired)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

func validatePassword(field, password string) error {
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return invalid(field, fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
	}
	// bcrypt refuses longer input, and multi-byte characters reach the limit early.
	if len(password) > security.MaxPasswordBytes {
		return invalid(field, fmt.Sprintf("must not exceed %d bytes", security.MaxPasswordBytes))
	}
	return nil
}

func validateCode(code string) error {
	if len(code) != 6 {
		return invalid("code", "must be 6 digits")
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return invalid("code", "must be 6 digits")
		}
	}
	return nil
}
