package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/http/middleware"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
	servicegomock "github.com/sandeepkv93/debt-ledger-service/internal/service/gomock"
)

func newLedgerRouter(contacts *ContactHandler, debts *DebtHandler, jwtMgr *security.JWTManager) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(jwtMgr))
		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", contacts.Create)
			r.Get("/", contacts.List)
			r.Get("/{id}", contacts.Get)
			r.Put("/{id}", contacts.Update)
			r.Delete("/{id}", contacts.Delete)
		})
		r.Route("/debts", func(r chi.Router) {
			r.Post("/", debts.Create)
			r.Get("/", debts.List)
			r.Get("/overview", debts.Overview)
			r.Post("/statements", debts.ExportStatement)
			r.Get("/{id}", debts.Get)
			r.Put("/{id}", debts.Update)
			r.Patch("/{id}/pay", debts.MarkPaid)
			r.Delete("/{id}", debts.Delete)
		})
	})
	return r
}

type ledgerMocks struct {
	contacts   *servicegomock.MockContactServiceInterface
	debts      *servicegomock.MockDebtServiceInterface
	statements *servicegomock.MockStatementServiceInterface
	router     http.Handler
	authz      string
}

func newLedgerMocks(t *testing.T, withStatements bool) *ledgerMocks {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &ledgerMocks{
		contacts:   servicegomock.NewMockContactServiceInterface(ctrl),
		debts:      servicegomock.NewMockDebtServiceInterface(ctrl),
		statements: servicegomock.NewMockStatementServiceInterface(ctrl),
	}
	var statements service.StatementServiceInterface
	if withStatements {
		statements = m.statements
	}
	jwtMgr := newTestJWT()
	m.router = newLedgerRouter(NewContactHandler(m.contacts), NewDebtHandler(m.debts, statements), jwtMgr)
	m.authz = bearerFor(t, jwtMgr, 42)
	return m
}

func TestContactHandler(t *testing.T) {
	m := newLedgerMocks(t, false)

	t.Run("create", func(t *testing.T) {
		m.contacts.EXPECT().Create(gomock.Any(), uint(42), service.ContactInput{Name: "Bob", Phone: "+15550001"}).
			Return(&domain.Contact{ID: 1, UserID: 42, Name: "Bob", Phone: "+15550001"}, nil)
		rr := doRequest(t, m.router, http.MethodPost, "/api/v1/contacts", strings.NewReader(`{"name":"Bob","phone":"+15550001"}`), m.authz)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("duplicate phone conflicts", func(t *testing.T) {
		m.contacts.EXPECT().Create(gomock.Any(), uint(42), gomock.Any()).Return(nil, service.ErrPhoneTaken)
		rr := doRequest(t, m.router, http.MethodPost, "/api/v1/contacts", strings.NewReader(`{"name":"Bob","phone":"+15550001"}`), m.authz)
		if rr.Code != http.StatusConflict || decodeEnvelope(t, rr).Code != "CONFLICT" {
			t.Fatalf("expected 409 CONFLICT, got %d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("list reports count and empty array", func(t *testing.T) {
		m.contacts.EXPECT().List(gomock.Any(), uint(42)).Return(&service.ContactList{}, nil)
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/contacts", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		env := decodeEnvelope(t, rr)
		if env.Message != "Retrieved 0 contacts" {
			t.Fatalf("unexpected message %q", env.Message)
		}
		if !strings.Contains(string(env.Data), `"contacts":[]`) {
			t.Fatalf("expected empty contacts array, got %s", string(env.Data))
		}
	})

	t.Run("get unowned is not found", func(t *testing.T) {
		m.contacts.EXPECT().Get(gomock.Any(), uint(42), uint(99)).Return(nil, service.ErrContactNotFound)
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/contacts/99", nil, m.authz)
		if rr.Code != http.StatusNotFound || decodeEnvelope(t, rr).Code != "NOT_FOUND" {
			t.Fatalf("expected 404 NOT_FOUND, got %d", rr.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-1"} {
			rr := doRequest(t, m.router, http.MethodGet, "/api/v1/contacts/"+id, nil, m.authz)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("id %q: expected 400, got %d", id, rr.Code)
			}
		}
	})

	t.Run("update sends partial patch", func(t *testing.T) {
		m.contacts.EXPECT().Update(gomock.Any(), uint(42), uint(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ uint, patch service.ContactPatch) (*domain.Contact, error) {
				if patch.Name == nil || *patch.Name != "Robert" || patch.Phone != nil {
					t.Fatalf("unexpected patch %+v", patch)
				}
				return &domain.Contact{ID: 1, Name: "Robert"}, nil
			})
		rr := doRequest(t, m.router, http.MethodPut, "/api/v1/contacts/1", strings.NewReader(`{"name":"Robert"}`), m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("delete reports cascade", func(t *testing.T) {
		m.contacts.EXPECT().Delete(gomock.Any(), uint(42), uint(1)).
			Return(&service.ContactDeletion{DeletedContact: &domain.Contact{ID: 1}, DeletedDebtsCount: 3}, nil)
		rr := doRequest(t, m.router, http.MethodDelete, "/api/v1/contacts/1", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var data service.ContactDeletion
		decodeData(t, decodeEnvelope(t, rr), &data)
		if data.DeletedDebtsCount != 3 {
			t.Fatalf("expected 3 deleted debts, got %d", data.DeletedDebtsCount)
		}
	})

	t.Run("requires bearer", func(t *testing.T) {
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/contacts", nil, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestDebtHandlerList(t *testing.T) {
	m := newLedgerMocks(t, false)

	t.Run("filters and pagination parsed and echoed", func(t *testing.T) {
		m.debts.EXPECT().List(gomock.Any(), uint(42), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uint, f repository.DebtFilter, p repository.PageRequest) (repository.PageResult[domain.Debt], error) {
				if f.IsPaid == nil || *f.IsPaid || f.IsMyDebt != nil || f.ContactID == nil || *f.ContactID != 7 {
					t.Fatalf("unexpected filter %+v", f)
				}
				if p.Page != 2 || p.PageSize != 5 {
					t.Fatalf("unexpected page %+v", p)
				}
				return repository.PageResult[domain.Debt]{Items: []domain.Debt{{ID: 1}, {ID: 2}}, Page: 2, PageSize: 5, Total: 7, TotalPages: 2}, nil
			})
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/debts?is_paid=false&contact_id=7&page=2&page_size=5", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
		}
		env := decodeEnvelope(t, rr)
		if env.Message != "Retrieved 2 debts" {
			t.Fatalf("unexpected message %q", env.Message)
		}
		var data struct {
			Debts      []domain.Debt `json:"debts"`
			TotalCount int64         `json:"total_count"`
			Filters    struct {
				IsPaid    *bool `json:"is_paid"`
				IsMyDebt  *bool `json:"is_my_debt"`
				ContactID *uint `json:"contact_id"`
			} `json:"filters"`
			Pagination struct {
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		}
		decodeData(t, env, &data)
		if len(data.Debts) != 2 || data.TotalCount != 7 || data.Pagination.TotalPages != 2 {
			t.Fatalf("unexpected data %+v", data)
		}
		if data.Filters.IsPaid == nil || *data.Filters.IsPaid || data.Filters.IsMyDebt != nil || data.Filters.ContactID == nil {
			t.Fatalf("filters not echoed: %+v", data.Filters)
		}
	})

	t.Run("bad query rejected before service", func(t *testing.T) {
		for _, q := range []string{"is_paid=maybe", "is_my_debt=2", "contact_id=x", "page=0", "page_size=101"} {
			rr := doRequest(t, m.router, http.MethodGet, "/api/v1/debts?"+q, nil, m.authz)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("query %q: expected 400, got %d", q, rr.Code)
			}
		}
	})

	t.Run("foreign contact filter", func(t *testing.T) {
		m.debts.EXPECT().List(gomock.Any(), uint(42), gomock.Any(), gomock.Any()).
			Return(repository.PageResult[domain.Debt]{}, service.ErrContactNotFound)
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/debts?contact_id=500", nil, m.authz)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestDebtHandlerMutations(t *testing.T) {
	m := newLedgerMocks(t, false)
	paidAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create", func(t *testing.T) {
		m.debts.EXPECT().Create(gomock.Any(), uint(42), service.DebtInput{ContactID: 1, Amount: 12.5, Description: "lunch", IsMyDebt: true}).
			Return(&domain.Debt{ID: 3, ContactID: 1, Amount: 12.5, ContactName: "Bob", IsMyDebt: true}, nil)
		rr := doRequest(t, m.router, http.MethodPost, "/api/v1/debts",
			strings.NewReader(`{"contact_id":1,"amount":12.5,"description":"lunch","is_my_debt":true}`), m.authz)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
		}
		var debt domain.Debt
		decodeData(t, decodeEnvelope(t, rr), &debt)
		if debt.ContactName != "Bob" {
			t.Fatalf("expected contact_name, got %+v", debt)
		}
	})

	t.Run("amount validation", func(t *testing.T) {
		m.debts.EXPECT().Create(gomock.Any(), uint(42), gomock.Any()).Return(nil, &service.ValidationError{Field: "amount", Reason: "must be greater than 0"})
		rr := doRequest(t, m.router, http.MethodPost, "/api/v1/debts", strings.NewReader(`{"contact_id":1,"amount":0}`), m.authz)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("update reopens", func(t *testing.T) {
		m.debts.EXPECT().Update(gomock.Any(), uint(42), uint(3), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ uint, patch service.DebtPatch) (*domain.Debt, error) {
				if patch.IsPaid == nil || *patch.IsPaid || patch.Amount != nil {
					t.Fatalf("unexpected patch %+v", patch)
				}
				return &domain.Debt{ID: 3}, nil
			})
		rr := doRequest(t, m.router, http.MethodPut, "/api/v1/debts/3", strings.NewReader(`{"is_paid":false}`), m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("mark paid", func(t *testing.T) {
		m.debts.EXPECT().MarkPaid(gomock.Any(), uint(42), uint(3)).Return(&domain.Debt{ID: 3, IsPaid: true, PaidAt: &paidAt}, nil)
		rr := doRequest(t, m.router, http.MethodPatch, "/api/v1/debts/3/pay", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if env := decodeEnvelope(t, rr); env.Message != "Debt marked as paid" {
			t.Fatalf("unexpected message %q", env.Message)
		}
	})

	t.Run("delete returns snapshot", func(t *testing.T) {
		m.debts.EXPECT().Get(gomock.Any(), uint(42), uint(3)).Return(&domain.Debt{ID: 3, Amount: 9}, nil)
		m.debts.EXPECT().Delete(gomock.Any(), uint(42), uint(3)).Return(nil)
		rr := doRequest(t, m.router, http.MethodDelete, "/api/v1/debts/3", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var data struct {
			DeletedDebt domain.Debt `json:"deleted_debt"`
		}
		decodeData(t, decodeEnvelope(t, rr), &data)
		if data.DeletedDebt.ID != 3 {
			t.Fatalf("unexpected deleted debt %+v", data.DeletedDebt)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		m.debts.EXPECT().Get(gomock.Any(), uint(42), uint(4)).Return(nil, service.ErrDebtNotFound)
		rr := doRequest(t, m.router, http.MethodDelete, "/api/v1/debts/4", nil, m.authz)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("overview", func(t *testing.T) {
		m.debts.EXPECT().Overview(gomock.Any(), uint(42)).Return(&service.DebtOverview{
			Summary:     domain.DebtOverview{IOwe: 80, TheyOweMe: 30, NetBalance: -50},
			RecentDebts: []domain.Debt{},
		}, nil)
		rr := doRequest(t, m.router, http.MethodGet, "/api/v1/debts/overview", nil, m.authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var data service.DebtOverview
		decodeData(t, decodeEnvelope(t, rr), &data)
		if data.Summary.NetBalance != -50 {
			t.Fatalf("unexpected overview %+v", data)
		}
	})

	t.Run("statements disabled", func(t *testing.T) {
		rr := doRequest(t, m.router, http.MethodPost, "/api/v1/debts/statements", nil, m.authz)
		if rr.Code != http.StatusNotFound || decodeEnvelope(t, rr).Code != "NOT_ENABLED" {
			t.Fatalf("expected 404 NOT_ENABLED, got %d", rr.Code)
		}
	})
}

func TestDebtHandlerStatements(t *testing.T) {
	m := newLedgerMocks(t, true)

	m.statements.EXPECT().Generate(gomock.Any(), uint(42), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uint, f repository.DebtFilter) (*service.Statement, error) {
			if f.IsMyDebt == nil || !*f.IsMyDebt {
				t.Fatalf("expected is_my_debt filter, got %+v", f)
			}
			return &service.Statement{ObjectKey: "statements/user-42/x.csv", URL: "https://minio.local/x", DebtsCount: 2}, nil
		})
	rr := doRequest(t, m.router, http.MethodPost, "/api/v1/debts/statements?is_my_debt=true", nil, m.authz)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var stmt service.Statement
	decodeData(t, decodeEnvelope(t, rr), &stmt)
	if stmt.DebtsCount != 2 || stmt.URL == "" {
		t.Fatalf("unexpected statement %+v", stmt)
	}

	m.statements.EXPECT().Generate(gomock.Any(), uint(42), gomock.Any()).Return(nil, service.ErrUploadFailed)
	rr = doRequest(t, m.router, http.MethodPost, "/api/v1/debts/statements", nil, m.authz)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}
