package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

const (
	maxDescriptionLen = 255
	recentDebtsLimit  = 5
)

type DebtInput struct {
	ContactID   uint
	Amount      float64
	Description string
	IsMyDebt    bool
}

type DebtPatch struct {
	Amount      *float64
	Description *string
	IsPaid      *bool
	IsMyDebt    *bool
}

type DebtOverview struct {
	Summary     domain.DebtOverview `json:"summary"`
	RecentDebts []domain.Debt       `json:"recent_debts"`
}

type DebtService struct {
	debts    repository.DebtRepository
	contacts repository.ContactRepository
	now      func() time.Time
}

func NewDebtService(debts repository.DebtRepository, contacts repository.ContactRepository) *DebtService {
	return &DebtService{debts: debts, contacts: contacts, now: time.Now}
}

func (s *DebtService) Create(ctx context.Context, userID uint, in DebtInput) (_ *domain.Debt, err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "create", start, err) }(time.Now())

	if err := validAmount(in.Amount); err != nil {
		return nil, err
	}
	desc, err := validDescription(in.Description)
	if err != nil {
		return nil, err
	}
	contact, err := s.contacts.FindByIDForUser(ctx, userID, in.ContactID)
	if err != nil {
		return nil, mapContactErr(err)
	}
	debt := &domain.Debt{
		ContactID:   contact.ID,
		Amount:      in.Amount,
		Description: desc,
		IsMyDebt:    in.IsMyDebt,
	}
	if err := s.debts.Create(ctx, debt); err != nil {
		return nil, err
	}
	debt.ContactName = contact.Name
	return debt, nil
}

func (s *DebtService) List(ctx context.Context, userID uint, filter repository.DebtFilter, page repository.PageRequest) (_ repository.PageResult[domain.Debt], err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "list", start, err) }(time.Now())

	if filter.ContactID != nil {
		if _, err := s.contacts.FindByIDForUser(ctx, userID, *filter.ContactID); err != nil {
			return repository.PageResult[domain.Debt]{}, mapContactErr(err)
		}
	}
	return s.debts.ListForUser(ctx, userID, filter, page)
}

func (s *DebtService) Get(ctx context.Context, userID, id uint) (_ *domain.Debt, err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "get", start, err) }(time.Now())

	debt, err := s.debts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapDebtErr(err)
	}
	return debt, nil
}

func (s *DebtService) Update(ctx context.Context, userID, id uint, patch DebtPatch) (_ *domain.Debt, err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "update", start, err) }(time.Now())

	updates := map[string]any{}
	if patch.Amount != nil {
		if err := validAmount(*patch.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *patch.Amount
	}
	if patch.Description != nil {
		desc, err := validDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = desc
	}
	if patch.IsMyDebt != nil {
		updates["is_my_debt"] = *patch.IsMyDebt
	}
	if patch.IsPaid != nil {
		updates["is_paid"] = *patch.IsPaid
		if *patch.IsPaid {
			updates["paid_at"] = s.now().UTC()
		} else {
			updates["paid_at"] = nil
		}
	}
	if len(updates) == 0 {
		return nil, invalid("", "no fields to update")
	}
	return s.apply(ctx, userID, id, updates)
}

// MarkPaid settles a debt. Paying an already paid debt keeps the first paid_at.
func (s *DebtService) MarkPaid(ctx context.Context, userID, id uint) (_ *domain.Debt, err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "pay", start, err) }(time.Now())

	debt, err := s.debts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapDebtErr(err)
	}
	if debt.IsPaid {
		return debt, nil
	}
	return s.apply(ctx, userID, id, map[string]any{"is_paid": true, "paid_at": s.now().UTC()})
}

func (s *DebtService) Delete(ctx context.Context, userID, id uint) (err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "delete", start, err) }(time.Now())

	return mapDebtErr(s.debts.Delete(ctx, userID, id))
}

func (s *DebtService) Overview(ctx context.Context, userID uint) (_ *DebtOverview, err error) {
	defer func(start time.Time) { observeLedger(ctx, "debt", "overview", start, err) }(time.Now())

	summary, err := s.debts.Overview(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.debts.Recent(ctx, userID, recentDebtsLimit)
	if err != nil {
		return nil, err
	}
	return &DebtOverview{Summary: summary, RecentDebts: recent}, nil
}

func (s *DebtService) apply(ctx context.Context, userID, id uint, updates map[string]any) (*domain.Debt, error) {
	if err := s.debts.Update(ctx, userID, id, updates); err != nil {
		return nil, mapDebtErr(err)
	}
	debt, err := s.debts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapDebtErr(err)
	}
	return debt, nil
}

func mapDebtErr(err error) error {
	if errors.Is(err, repository.ErrDebtNotFound) {
		return ErrDebtNotFound
	}
	return err
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return invalid("amount", "must be greater than 0")
	}
	return nil
}

func validDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return "", invalid("description", "must be at most 255 characters")
	}
	return desc, nil
}
