package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	EmailVerified  bool
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error)
}

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	ErrOAuthUserInfoStatus  = errors.New("google userinfo request failed")
	ErrOAuthUserInfoInvalid = errors.New("missing required userinfo fields")
	ErrOAuthEmailUnverified = errors.New("google email not verified")
)

type GoogleOAuthProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuthProvider(cfg *config.Config) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{userInfoURL: googleUserInfoURL, cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error) {
	client := p.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrOAuthUserInfoStatus, resp.StatusCode)
	}
	var body struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthUserInfoInvalid, err)
	}
	if body.Sub == "" || body.Email == "" {
		return nil, ErrOAuthUserInfoInvalid
	}
	return &OAuthUserInfo{ProviderUserID: body.Sub, Email: strings.ToLower(body.Email), Name: body.Name, EmailVerified: body.EmailVerified}, nil
}

const googleProvider = "google"

type OAuthService struct {
	provider  OAuthProvider
	userRepo  repository.UserRepository
	oauthRepo repository.OAuthRepository
}

func NewOAuthService(provider OAuthProvider, userRepo repository.UserRepository, oauthRepo repository.OAuthRepository) *OAuthService {
	return &OAuthService{provider: provider, userRepo: userRepo, oauthRepo: oauthRepo}
}

func (s *OAuthService) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// HandleGoogleCallback resolves the Google identity to a verified user,
// linking an existing account by email or creating a password-less one.
func (s *OAuthService) HandleGoogleCallback(ctx context.Context, code string) (*domain.User, error) {
	exchangeStart := time.Now()
	token, err := s.provider.Exchange(ctx, code)
	observability.RecordGoogleOAuthRequestDuration(ctx, "exchange", oauthStatus(err), time.Since(exchangeStart))
	if err != nil {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(err))
		return nil, err
	}
	userInfoStart := time.Now()
	info, err := s.provider.FetchUserInfo(ctx, token)
	observability.RecordGoogleOAuthRequestDuration(ctx, "userinfo", oauthStatus(err), time.Since(userInfoStart))
	if err != nil {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(err))
		return nil, err
	}
	if info == nil {
		info = &OAuthUserInfo{}
	}
	if info.ProviderUserID == "" || info.Email == "" {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(ErrOAuthUserInfoInvalid))
		return nil, ErrOAuthUserInfoInvalid
	}
	if !info.EmailVerified {
		observability.RecordGoogleOAuthError(ctx, classifyOAuthError(ErrOAuthEmailUnverified))
		return nil, ErrOAuthEmailUnverified
	}

	acct, err := s.oauthRepo.FindByProvider(ctx, googleProvider, info.ProviderUserID)
	switch {
	case err == nil:
		return s.userRepo.FindByID(ctx, acct.UserID)
	case !errors.Is(err, repository.ErrOAuthAccountNotFound):
		return nil, err
	}

	user, err := s.resolveUser(ctx, info)
	if err != nil {
		return nil, err
	}
	if err := s.oauthRepo.Create(ctx, &domain.OAuthAccount{UserID: user.ID, Provider: googleProvider, ProviderUserID: info.ProviderUserID}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *OAuthService) resolveUser(ctx context.Context, info *OAuthUserInfo) (*domain.User, error) {
	now := time.Now().UTC()
	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if err == nil {
		if !user.IsVerified {
			if err := s.userRepo.MarkVerified(ctx, user.ID, now); err != nil && !errors.Is(err, repository.ErrUserAlreadyVerified) {
				return nil, err
			}
			user.IsVerified = true
			user.VerifiedAt = &now
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.User{Email: info.Email, FullName: info.Name, IsVerified: true, VerifiedAt: &now}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return s.userRepo.FindByEmail(ctx, info.Email)
		}
		return nil, err
	}
	return user, nil
}

func oauthStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// classifyOAuthError buckets provider failures into a small set of metric labels.
func classifyOAuthError(err error) string {
	var (
		netErr      net.Error
		retrieveErr *oauth2.RetrieveError
	)
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, ErrOAuthUserInfoStatus):
		return "userinfo_status"
	case errors.Is(err, ErrOAuthUserInfoInvalid):
		return "invalid_userinfo"
	case errors.Is(err, ErrOAuthEmailUnverified):
		return "email_not_verified"
	case errors.As(err, &retrieveErr):
		return "oauth2_exchange"
	default:
		return "other"
	}
}
