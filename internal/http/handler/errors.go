package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/debt-ledger-service/internal/http/middleware"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

type errorKind struct {
	status  int
	code    string
	message string
}

var errorKinds = []struct {
	err  error
	kind errorKind
}{
	{service.ErrDuplicateEmail, errorKind{http.StatusConflict, "DUPLICATE_EMAIL", "Email already registered"}},
	{service.ErrUserNotFound, errorKind{http.StatusNotFound, "USER_NOT_FOUND", "User not found"}},
	{service.ErrInvalidCredentials, errorKind{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}},
	{service.ErrNotVerified, errorKind{http.StatusForbidden, "NOT_VERIFIED", "Email not verified. Please verify your email first."}},
	{service.ErrAlreadyVerified, errorKind{http.StatusConflict, "ALREADY_VERIFIED", "Email already verified"}},
	{service.ErrCodeNotFound, errorKind{http.StatusBadRequest, "CODE_NOT_FOUND", "Verification code not found"}},
	{service.ErrCodeExpired, errorKind{http.StatusBadRequest, "CODE_EXPIRED", "Verification code has expired"}},
	{service.ErrCodeMismatch, errorKind{http.StatusBadRequest, "CODE_MISMATCH", "Invalid verification code"}},
	{service.ErrCodeAlreadyUsed, errorKind{http.StatusConflict, "CODE_ALREADY_USED", "Verification code already used"}},
	{service.ErrPasswordUnchanged, errorKind{http.StatusBadRequest, "BAD_REQUEST", "New password must be different from current password"}},
	{service.ErrGoogleAuthDisabled, errorKind{http.StatusNotFound, "NOT_ENABLED", "Google sign-in is not enabled"}},
	{service.ErrStorageDisabled, errorKind{http.StatusNotFound, "NOT_ENABLED", "Statement export is not enabled"}},
	{service.ErrUploadFailed, errorKind{http.StatusBadGateway, "STORAGE_UNAVAILABLE", "Statement storage is unavailable"}},
	{service.ErrURLGenerationFailed, errorKind{http.StatusBadGateway, "STORAGE_UNAVAILABLE", "Statement storage is unavailable"}},
	{service.ErrContactNotFound, errorKind{http.StatusNotFound, "NOT_FOUND", "Contact not found"}},
	{service.ErrDebtNotFound, errorKind{http.StatusNotFound, "NOT_FOUND", "Debt not found"}},
	{service.ErrPhoneTaken, errorKind{http.StatusConflict, "CONFLICT", "Contact with this phone number already exists"}},
}

// writeServiceError renders a service failure. Unknown errors become a
// generic 500 and are only logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Validation failed", []string{validation.Error()})
		return
	}
	var throttled *service.ThrottledError
	if errors.As(err, &throttled) {
		w.Header().Set("Retry-After", middleware.RetryAfterHeader(throttled.RetryAfter))
		response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many failed attempts, try again later", nil)
		return
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			response.Error(w, r, k.kind.status, k.kind.code, k.kind.message, nil)
			return
		}
	}
	slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback, nil)
}

func badRequest(w http.ResponseWriter, r *http.Request, details ...string) {
	response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request", details)
}
