package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
	"github.com/sandeepkv93/debt-ledger-service/internal/security"
)

// CodeLedger owns the lifecycle of one-time verification codes. At most one
// code per (email, purpose) is live at a time and each code is consumed at most once.
type CodeLedger struct {
	repo repository.VerificationCodeRepository
	gen  *security.CodeGenerator
}

func NewCodeLedger(repo repository.VerificationCodeRepository, gen *security.CodeGenerator) *CodeLedger {
	return &CodeLedger{repo: repo, gen: gen}
}

func (l *CodeLedger) Issue(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	ctx, span := observability.StartSpan(ctx, "code_ledger.issue", attribute.String("code.purpose", string(purpose)))
	defer span.End()

	if !purpose.Valid() {
		return nil, invalid("purpose", "is not supported")
	}
	code, expiresAt, err := l.gen.Generate(purpose)
	if err != nil {
		observability.RecordCodeEvent(ctx, string(purpose), "error")
		return nil, fmt.Errorf("generate code: %w", err)
	}
	record := &domain.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}
	superseded, err := l.repo.Replace(ctx, record, l.gen.Now())
	if err != nil {
		observability.RecordCodeEvent(ctx, string(purpose), "error")
		return nil, fmt.Errorf("store code: %w", err)
	}
	if superseded > 0 {
		observability.RecordCodeEvent(ctx, string(purpose), "superseded")
	}
	observability.RecordCodeEvent(ctx, string(purpose), "issued")
	return record, nil
}

// Consume accepts submitted iff the newest unused code matches it and has not
// expired. Concurrent consumers of one code see exactly one success.
func (l *CodeLedger) Consume(ctx context.Context, email string, purpose domain.CodePurpose, submitted string) error {
	ctx, span := observability.StartSpan(ctx, "code_ledger.consume", attribute.String("code.purpose", string(purpose)))
	defer span.End()

	record, err := l.match(ctx, email, purpose, submitted)
	if err != nil {
		return err
	}
	if err := l.repo.Consume(ctx, record.ID, l.gen.Now()); err != nil {
		if errors.Is(err, repository.ErrVerificationCodeUsed) {
			observability.RecordCodeEvent(ctx, string(purpose), "already_used")
			return ErrCodeAlreadyUsed
		}
		observability.RecordCodeEvent(ctx, string(purpose), "error")
		return err
	}
	observability.RecordCodeEvent(ctx, string(purpose), "consumed")
	return nil
}

// Check runs the Consume checks without marking the code used.
func (l *CodeLedger) Check(ctx context.Context, email string, purpose domain.CodePurpose, submitted string) error {
	_, err := l.match(ctx, email, purpose, submitted)
	if err == nil {
		observability.RecordCodeEvent(ctx, string(purpose), "checked")
	}
	return err
}

func (l *CodeLedger) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := l.repo.DeleteStale(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge codes: %w", err)
	}
	return n, nil
}

func (l *CodeLedger) match(ctx context.Context, email string, purpose domain.CodePurpose, submitted string) (*domain.VerificationCode, error) {
	record, err := l.repo.FindLatestUnused(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationCodeNotFound) {
			observability.RecordCodeEvent(ctx, string(purpose), "not_found")
			return nil, ErrCodeNotFound
		}
		observability.RecordCodeEvent(ctx, string(purpose), "error")
		return nil, err
	}
	if record.ExpiredAt(l.gen.Now()) {
		observability.RecordCodeEvent(ctx, string(purpose), "expired")
		return nil, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		observability.RecordCodeEvent(ctx, string(purpose), "mismatch")
		return nil, ErrCodeMismatch
	}
	return record, nil
}

// TTL reports how long newly issued codes for purpose stay valid.
func (l *CodeLedger) TTL(purpose domain.CodePurpose) time.Duration {
	return l.gen.TTL(purpose)
}
