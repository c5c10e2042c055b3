package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
	servicegomock "github.com/sandeepkv93/debt-ledger-service/internal/service/gomock"
)

const testJWTSecret = "abcdefghijklmnopqrstuvwxyz123456"

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rr.Body.String())
	}
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", testJWTSecret, time.Hour)
	valid, _, err := jwtMgr.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, _, err := jwtMgr.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(7)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	foreign, _, err := security.NewJWTManager("iss", "aud", "zyxwvutsrqponmlkjihgfedcba654321", time.Hour).Issue(7)
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}

	var gotUID uint
	h := AuthMiddleware(jwtMgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Fatal("expected user id in context")
		}
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			t.Fatal("expected claims in context")
		}
		gotUID = uid
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "valid", header: "Bearer " + valid, wantCode: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + valid, wantCode: http.StatusNoContent},
		{name: "missing", header: "", wantCode: http.StatusUnauthorized, wantErr: "TOKEN_MALFORMED"},
		{name: "wrong scheme", header: "Basic " + valid, wantCode: http.StatusUnauthorized, wantErr: "TOKEN_MALFORMED"},
		{name: "garbage", header: "Bearer abc.def.ghi", wantCode: http.StatusUnauthorized, wantErr: "TOKEN_MALFORMED"},
		{name: "bad signature", header: "Bearer " + foreign, wantCode: http.StatusUnauthorized, wantErr: "TOKEN_MALFORMED"},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized, wantErr: "TOKEN_EXPIRED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotUID = 0
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d body=%s", tc.wantCode, rr.Code, rr.Body.String())
			}
			if tc.wantErr != "" {
				if got := errorCode(t, rr); got != tc.wantErr {
					t.Fatalf("expected code %s, got %s", tc.wantErr, got)
				}
				return
			}
			if gotUID != 7 {
				t.Fatalf("expected uid 7, got %d", gotUID)
			}
		})
	}
}

func TestRequireVerified(t *testing.T) {
	jwtMgr := security.NewJWTManager("iss", "aud", testJWTSecret, time.Hour)
	token, _, err := jwtMgr.Issue(9)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name     string
		meErr    error
		wantCode int
		wantErr  string
	}{
		{name: "verified", wantCode: http.StatusNoContent},
		{name: "unverified", meErr: service.ErrNotVerified, wantCode: http.StatusForbidden, wantErr: "NOT_VERIFIED"},
		{name: "deleted user", meErr: service.ErrUserNotFound, wantCode: http.StatusNotFound, wantErr: "USER_NOT_FOUND"},
		{name: "store failure", meErr: errors.New("db down"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			auth := servicegomock.NewMockAuthServiceInterface(ctrl)
			var user *domain.User
			if tc.meErr == nil {
				user = &domain.User{ID: 9, IsVerified: true}
			}
			auth.EXPECT().Me(gomock.Any(), uint(9)).Return(user, tc.meErr)

			h := AuthMiddleware(jwtMgr)(RequireVerified(auth)(http.HandlerFunc(noContent)))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if tc.wantErr != "" && errorCode(t, rr) != tc.wantErr {
				t.Fatalf("expected code %s, got %s", tc.wantErr, errorCode(t, rr))
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.9:4444": "203.0.113.9",
		"[::1]:8080":       "::1",
		"unix-socket":      "unix-socket",
	}
	for remote, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if got := ClientIP(req); got != want {
			t.Fatalf("ClientIP(%q)=%q want %q", remote, got, want)
		}
	}
}
