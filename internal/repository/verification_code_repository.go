package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

var (
	ErrVerificationCodeNotFound = errors.New("verification code not found")
	ErrVerificationCodeUsed     = errors.New("verification code already used")
)

type VerificationCodeRepository interface {
	// Replace marks every unused code for the same email and purpose as used
	// and inserts code, in one transaction. It returns how many codes it superseded.
	Replace(ctx context.Context, code *domain.VerificationCode, now time.Time) (int64, error)
	FindLatestUnused(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.VerificationCode, error)
	Consume(ctx context.Context, id uint, now time.Time) error
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

type GormVerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

func (r *GormVerificationCodeRepository) Replace(ctx context.Context, code *domain.VerificationCode, now time.Time) (int64, error) {
	var superseded int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.VerificationCode{}).
			Where("email = ? AND purpose = ? AND used_at IS NULL", code.Email, code.Purpose).
			Updates(map[string]any{"used_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		superseded = res.RowsAffected
		return tx.Create(code).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "verification_code", "replace", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "verification_code", "replace", "success")
	return superseded, nil
}

func (r *GormVerificationCodeRepository) FindLatestUnused(ctx context.Context, email string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	var code domain.VerificationCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND purpose = ? AND used_at IS NULL", email, purpose).
		Order("created_at desc, id desc").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "verification_code", "find_latest_unused", "not_found")
			return nil, ErrVerificationCodeNotFound
		}
		observability.RecordRepositoryOperation(ctx, "verification_code", "find_latest_unused", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "verification_code", "find_latest_unused", "success")
	return &code, nil
}

// Consume sets used_at only while it is still NULL. Of two racing callers
// exactly one sees a row change.
func (r *GormVerificationCodeRepository) Consume(ctx context.Context, id uint, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.VerificationCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Updates(map[string]any{"used_at": now, "updated_at": now})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "verification_code", "consume", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "verification_code", "consume", "conflict")
		return ErrVerificationCodeUsed
	}
	observability.RecordRepositoryOperation(ctx, "verification_code", "consume", "success")
	return nil
}

func (r *GormVerificationCodeRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (used_at IS NOT NULL AND used_at < ?)", before, before).
		Delete(&domain.VerificationCode{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "verification_code", "delete_stale", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "verification_code", "delete_stale", "success")
	return res.RowsAffected, nil
}
