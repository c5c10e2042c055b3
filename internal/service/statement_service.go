package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

const statementPathPrefix = "statements"

type Statement struct {
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	DebtsCount int       `json:"debts_count"`
}

// StatementService exports a user's debts as CSV to object storage.
type StatementService struct {
	debts  repository.DebtRepository
	store  ObjectStore
	urlTTL time.Duration
	now    func() time.Time
}

func NewStatementService(debts repository.DebtRepository, store ObjectStore, urlTTL time.Duration) *StatementService {
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &StatementService{debts: debts, store: store, urlTTL: urlTTL, now: time.Now}
}

func (s *StatementService) Generate(ctx context.Context, userID uint, filter repository.DebtFilter) (_ *Statement, err error) {
	defer func(start time.Time) { observeLedger(ctx, "statement", "generate", start, err) }(time.Now())

	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	debts, err := s.debts.ListAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	body, err := renderStatementCSV(debts)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s/user-%d/%s-%s.csv", statementPathPrefix, userID, now.Format("20060102T150405Z"), uuid.NewString())
	meta := map[string]string{
		"User-ID":      strconv.FormatUint(uint64(userID), 10),
		"Generated-At": now.Format(time.RFC3339),
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), "text/csv", meta); err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, key, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &Statement{ObjectKey: key, URL: url, ExpiresAt: now.Add(s.urlTTL), DebtsCount: len(debts)}, nil
}

var statementHeader = []string{"id", "created_at", "contact", "direction", "amount", "description", "status", "paid_at"}

func renderStatementCSV(debts []domain.Debt) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(statementHeader); err != nil {
		return nil, err
	}
	for _, d := range debts {
		direction := "they_owe_me"
		if d.IsMyDebt {
			direction = "i_owe"
		}
		status := "active"
		paidAt := ""
		if d.IsPaid {
			status = "paid"
		}
		if d.PaidAt != nil {
			paidAt = d.PaidAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatUint(uint64(d.ID), 10),
			d.CreatedAt.UTC().Format(time.RFC3339),
			d.ContactName,
			direction,
			strconv.FormatFloat(d.Amount, 'f', 2, 64),
			d.Description,
			status,
			paidAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
