package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/debt-ledger-service/internal/health"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/handler"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/middleware"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
)

const maxBodyBytes = 1 << 20

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ContactHandler   *handler.ContactHandler
	DebtHandler      *handler.DebtHandler
	JWTManager       *security.JWTManager
	Profiles         middleware.ProfileLookup
	CORSOrigins      []string
	TrustedProxies   []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	AuthRateLimiter  RateLimiterFunc
	APIRateLimiter   RateLimiterFunc
	Readiness        *health.ProbeRunner
	Logger           *slog.Logger
	EnableOTelHTTP   bool
}

// RateLimiterFunc is a limiter middleware built outside the router, usually
// backed by Redis. Nil falls back to an in-process limiter.
type RateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	logger := dep.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.TrustedRealIP(dep.TrustedProxies))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.ClientContext)

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.LocalRateLimit("auth", dep.AuthRateLimitRPM, time.Minute)
	}
	apiLimiter := dep.APIRateLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.LocalRateLimit("api", dep.APIRateLimitRPM, time.Minute)
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", readinessHandler(dep.Readiness))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter)
				r.Post("/register", dep.AuthHandler.Register)
				r.Post("/verify-email", dep.AuthHandler.VerifyEmail)
				r.Post("/login", dep.AuthHandler.Login)
				r.Post("/forgot-password", dep.AuthHandler.ForgotPassword)
				r.Post("/verify-reset-code", dep.AuthHandler.VerifyResetCode)
				r.Post("/reset-password", dep.AuthHandler.ResetPassword)
				r.Post("/resend-code", dep.AuthHandler.ResendCode)
				r.Get("/google/login", dep.AuthHandler.GoogleLogin)
				r.Get("/google/callback", dep.AuthHandler.GoogleCallback)
			})
			r.With(middleware.AuthMiddleware(dep.JWTManager), apiLimiter).Get("/me", dep.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(dep.JWTManager))
			r.Use(apiLimiter)
			r.Use(middleware.RequireVerified(dep.Profiles))

			r.Route("/contacts", func(r chi.Router) {
				r.Post("/", dep.ContactHandler.Create)
				r.Get("/", dep.ContactHandler.List)
				r.Get("/{id}", dep.ContactHandler.Get)
				r.Put("/{id}", dep.ContactHandler.Update)
				r.Delete("/{id}", dep.ContactHandler.Delete)
			})
			r.Route("/debts", func(r chi.Router) {
				r.Post("/", dep.DebtHandler.Create)
				r.Get("/", dep.DebtHandler.List)
				r.Get("/overview", dep.DebtHandler.Overview)
				r.Post("/statements", dep.DebtHandler.ExportStatement)
				r.Get("/{id}", dep.DebtHandler.Get)
				r.Put("/{id}", dep.DebtHandler.Update)
				r.Patch("/{id}/pay", dep.DebtHandler.MarkPaid)
				r.Delete("/{id}", dep.DebtHandler.Delete)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

func readinessHandler(probes *health.ProbeRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, results := probes.Ready(r.Context())
		if results == nil {
			results = []health.CheckResult{}
		}
		if ready {
			response.JSON(w, r, http.StatusOK, "ready", map[string]any{"status": "ready", "checks": results})
			return
		}
		details := make([]string, 0, len(results))
		for _, res := range results {
			if !res.Healthy {
				details = append(details, res.Name+": "+res.Error)
			}
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", details)
	}
}
