package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

const (
	maxContactNameLen = 100
	minPhoneLen       = 3
	maxPhoneLen       = 32
)

type ContactInput struct {
	Name  string
	Phone string
}

// ContactPatch carries the fields to change. Nil fields are left alone.
type ContactPatch struct {
	Name  *string
	Phone *string
}

type ContactWithSummary struct {
	domain.Contact
	DebtSummary domain.DebtSummary `json:"debt_summary"`
}

type ContactList struct {
	Contacts   []ContactWithSummary `json:"contacts"`
	TotalCount int                  `json:"total_count"`
}

type ContactDeletion struct {
	DeletedContact    *domain.Contact `json:"deleted_contact"`
	DeletedDebtsCount int64           `json:"deleted_debts_count"`
}

type ContactService struct {
	contacts repository.ContactRepository
	debts    repository.DebtRepository
}

func NewContactService(contacts repository.ContactRepository, debts repository.DebtRepository) *ContactService {
	return &ContactService{contacts: contacts, debts: debts}
}

func (s *ContactService) Create(ctx context.Context, userID uint, in ContactInput) (_ *domain.Contact, err error) {
	defer func(start time.Time) { observeLedger(ctx, "contact", "create", start, err) }(time.Now())

	name, err := validContactName(in.Name)
	if err != nil {
		return nil, err
	}
	phone, err := validPhone(in.Phone)
	if err != nil {
		return nil, err
	}
	contact := &domain.Contact{UserID: userID, Name: name, Phone: phone}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, mapContactErr(err)
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, userID uint) (_ *ContactList, err error) {
	defer func(start time.Time) { observeLedger(ctx, "contact", "list", start, err) }(time.Now())

	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.contacts.SummariesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ContactList{Contacts: make([]ContactWithSummary, 0, len(contacts)), TotalCount: len(contacts)}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, ContactWithSummary{Contact: c, DebtSummary: summaries[c.ID]})
	}
	return out, nil
}

// Get returns the contact with its debts, newest first.
func (s *ContactService) Get(ctx context.Context, userID, id uint) (_ *domain.Contact, err error) {
	defer func(start time.Time) { observeLedger(ctx, "contact", "get", start, err) }(time.Now())

	contact, err := s.contacts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapContactErr(err)
	}
	debts, err := s.debts.ListByContact(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	contact.Debts = debts
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, userID, id uint, patch ContactPatch) (_ *domain.Contact, err error) {
	defer func(start time.Time) { observeLedger(ctx, "contact", "update", start, err) }(time.Now())

	updates := map[string]any{}
	if patch.Name != nil {
		name, err := validContactName(*patch.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if patch.Phone != nil {
		phone, err := validPhone(*patch.Phone)
		if err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return nil, invalid("", "no fields to update")
	}
	if err := s.contacts.Update(ctx, userID, id, updates); err != nil {
		return nil, mapContactErr(err)
	}
	contact, err := s.contacts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapContactErr(err)
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, id uint) (_ *ContactDeletion, err error) {
	defer func(start time.Time) { observeLedger(ctx, "contact", "delete", start, err) }(time.Now())

	contact, err := s.contacts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, mapContactErr(err)
	}
	n, err := s.contacts.Delete(ctx, userID, id)
	if err != nil {
		return nil, mapContactErr(err)
	}
	return &ContactDeletion{DeletedContact: contact, DeletedDebtsCount: n}, nil
}

func mapContactErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrContactNotFound):
		return ErrContactNotFound
	case errors.Is(err, repository.ErrContactPhoneTaken):
		return ErrPhoneTaken
	default:
		return err
	}
}

func validContactName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxContactNameLen {
		return "", invalid("name", fmt.Sprintf("must be between 1 and %d characters", maxContactNameLen))
	}
	return name, nil
}

func validPhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(phone); n < minPhoneLen || n > maxPhoneLen {
		return "", invalid("phone", fmt.Sprintf("must be between %d and %d characters", minPhoneLen, maxPhoneLen))
	}
	return phone, nil
}
