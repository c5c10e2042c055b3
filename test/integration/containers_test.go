package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
	"github.com/sandeepkv93/debt-ledger-service/internal/database"
	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

func TestPostgresConcurrentRegistrationKeepsOneUser(t *testing.T) {
	db, err := database.Open(&config.Config{DatabaseURL: newPostgresDSN(t)})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(db)

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := users.Create(context.Background(), &domain.User{
				Email:        "race@example.com",
				FullName:     fmt.Sprintf("Racer %d", i),
				PasswordHash: "x",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrDuplicateEmail):
				duplicates++
			default:
				t.Errorf("unexpected create error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 || duplicates != attempts-1 {
		t.Fatalf("expected exactly one winner, got created=%d duplicates=%d", created, duplicates)
	}
}

func TestStatementExportToMinIO(t *testing.T) {
	env := newMinIOIntegrationEnv(t)
	s := newLedgerTestServer(t, ledgerServerOptions{store: env.store})
	token := s.registerVerifiedUser(t, "export@example.com", "secret123")

	contact := s.createContact(t, token, "Dana", "+15550004444")
	s.createDebt(t, token, contact.ID, 42, true)
	s.createDebt(t, token, contact.ID, 8, false)

	resp, apiEnv := s.do(t, http.MethodPost, "/api/v1/debts/statements?is_my_debt=true", nil, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("export: status=%d env=%+v", resp.StatusCode, apiEnv)
	}
	stmt := decodeInto[service.Statement](t, apiEnv)
	if stmt.DebtsCount != 1 || stmt.URL == "" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}

	info := env.mustStatObject(t, stmt.ObjectKey)
	if info.ContentType != "text/csv" {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}

	get, err := http.Get(stmt.URL)
	if err != nil {
		t.Fatalf("download presigned url: %v", err)
	}
	defer get.Body.Close()
	body, _ := io.ReadAll(get.Body)
	if get.StatusCode != http.StatusOK || !strings.Contains(string(body), "42") {
		t.Fatalf("unexpected download: %d %s", get.StatusCode, body)
	}
}
