package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

const oauthStateTTL = 5 * time.Minute

type AuthHandler struct {
	authSvc       service.AuthServiceInterface
	stateKey      string
	secureCookies bool
}

func NewAuthHandler(authSvc service.AuthServiceInterface, stateKey string, secureCookies bool) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, stateKey: stateKey, secureCookies: secureCookies}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
}

type emailCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type resendCodeRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

func recordAuthDuration(r *http.Request, endpoint string, start time.Time, status *string) {
	observability.RecordAuthRequestDuration(r.Context(), endpoint, *status, time.Since(start))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "register", time.Now(), &status)

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	result, err := h.authSvc.Register(r.Context(), service.RegisterInput{Email: req.Email, Password: req.Password, FullName: req.FullName})
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.register.failed", "error", err.Error())
		writeServiceError(w, r, err, "registration failed")
		return
	}
	observability.Audit(r, "auth.register.success", "user_id", result.UserID)
	response.JSON(w, r, http.StatusCreated, "User registered successfully. Please check your email for verification code.", result)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "verify_email", time.Now(), &status)

	var req emailCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	user, err := h.authSvc.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.verify_email.failed", "error", err.Error())
		writeServiceError(w, r, err, "email verification failed")
		return
	}
	observability.Audit(r, "auth.verify_email.success", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, "Email verified successfully", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "login", time.Now(), &status)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.login.failed", "error", err.Error())
		writeServiceError(w, r, err, "login failed")
		return
	}
	observability.Audit(r, "auth.login.success", "user_id", result.User.ID, "provider", "password")
	response.JSON(w, r, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.authSvc.Me(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "failed to load user")
		return
	}
	response.JSON(w, r, http.StatusOK, "User info retrieved", user)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "forgot_password", time.Now(), &status)

	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	result, err := h.authSvc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.forgot_password.failed", "error", err.Error())
		writeServiceError(w, r, err, "password reset request failed")
		return
	}
	observability.Audit(r, "auth.forgot_password.success")
	response.JSON(w, r, http.StatusOK, "Password reset code sent successfully", result)
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "verify_reset_code", time.Now(), &status)

	var req emailCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	if err := h.authSvc.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		status = "failure"
		observability.Audit(r, "auth.verify_reset_code.failed", "error", err.Error())
		writeServiceError(w, r, err, "reset code verification failed")
		return
	}
	response.JSON(w, r, http.StatusOK, "Reset code is valid", map[string]any{"email": req.Email, "valid": true})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "reset_password", time.Now(), &status)

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		status = "failure"
		observability.Audit(r, "auth.reset_password.failed", "error", err.Error())
		writeServiceError(w, r, err, "password reset failed")
		return
	}
	observability.Audit(r, "auth.reset_password.success")
	response.JSON(w, r, http.StatusOK, "Password reset successfully", nil)
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "resend_code", time.Now(), &status)

	var req resendCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		status = "failure"
		badRequest(w, r, err.Error())
		return
	}
	result, err := h.authSvc.ResendCode(r.Context(), req.Email, domain.CodePurpose(req.Purpose))
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.resend_code.failed", "purpose", req.Purpose, "error", err.Error())
		writeServiceError(w, r, err, "failed to resend code")
		return
	}
	observability.Audit(r, "auth.resend_code.success", "purpose", req.Purpose)
	response.JSON(w, r, http.StatusOK, "Verification code resent successfully", result)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "google_login", time.Now(), &status)

	state, err := security.NewRandomString(24)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.google.login.failed", "reason", "state_generation")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to generate oauth state", nil)
		return
	}
	target, err := h.authSvc.GoogleLoginURL(state)
	if err != nil {
		status = "failure"
		writeServiceError(w, r, err, "google sign-in unavailable")
		return
	}
	http.SetCookie(w, security.NewStateCookie(security.SignState(state, h.stateKey), h.secureCookies, oauthStateTTL))
	observability.Audit(r, "auth.google.login.redirect")
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	status := "success"
	defer recordAuthDuration(r, "google_callback", time.Now(), &status)

	queryState := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if queryState == "" || code == "" {
		status = "failure"
		observability.Audit(r, "auth.google.callback.failed", "reason", "missing_code_or_state")
		badRequest(w, r, "missing state or code")
		return
	}
	state, ok := security.VerifySignedState(security.GetCookie(r, security.OAuthStateCookie), h.stateKey)
	if !ok || state != queryState {
		status = "failure"
		observability.Audit(r, "auth.google.callback.failed", "reason", "invalid_state")
		response.Error(w, r, http.StatusUnauthorized, "OAUTH_STATE_INVALID", "invalid oauth state", nil)
		return
	}
	// one-time state
	http.SetCookie(w, security.ClearStateCookie(h.secureCookies))

	result, err := h.authSvc.LoginWithGoogle(r.Context(), code)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.google.callback.failed", "reason", "oauth_exchange", "error", err.Error())
		if errors.Is(err, service.ErrGoogleAuthDisabled) {
			writeServiceError(w, r, err, "google sign-in unavailable")
			return
		}
		slog.WarnContext(r.Context(), "google sign-in failed", "error", err.Error())
		response.Error(w, r, http.StatusUnauthorized, "OAUTH_FAILED", "google sign-in failed", nil)
		return
	}
	observability.Audit(r, "auth.login.success", "user_id", result.User.ID, "provider", "google")
	response.JSON(w, r, http.StatusOK, "Login successful", result)
}
