package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrContactPhoneTaken = errors.New("contact with this phone number already exists")
)

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	FindByIDForUser(ctx context.Context, userID, id uint) (*domain.Contact, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Contact, error)
	SummariesByUser(ctx context.Context, userID uint) (map[uint]domain.DebtSummary, error)
	Update(ctx context.Context, userID, id uint, updates map[string]any) error
	// Delete removes the contact and its debts together and reports how many debts went with it.
	Delete(ctx context.Context, userID, id uint) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type GormContactRepository struct{ db *gorm.DB }

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "contact", "create", "conflict")
			return ErrContactPhoneTaken
		}
		observability.RecordRepositoryOperation(ctx, "contact", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "contact", "create", "success")
	return nil
}

func (r *GormContactRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "contact", "find_by_id", "not_found")
			return nil, ErrContactNotFound
		}
		observability.RecordRepositoryOperation(ctx, "contact", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "contact", "find_by_id", "success")
	return &contact, nil
}

func (r *GormContactRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Contact, error) {
	var contacts []domain.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name asc, id asc").Find(&contacts).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "contact", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "contact", "list", "success")
	return contacts, nil
}

type contactSummaryRow struct {
	ContactID        uint    `gorm:"column:contact_id"`
	IOweThem         float64 `gorm:"column:i_owe_them"`
	TheyOweMe        float64 `gorm:"column:they_owe_me"`
	ActiveDebtsCount int64   `gorm:"column:active_debts_count"`
}

// SummariesByUser aggregates unpaid debts per contact. Contacts without unpaid
// debts are absent from the map.
func (r *GormContactRepository) SummariesByUser(ctx context.Context, userID uint) (map[uint]domain.DebtSummary, error) {
	var rows []contactSummaryRow
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(
			"debts.contact_id AS contact_id, "+
				"COALESCE(SUM(CASE WHEN debts.is_my_debt = ? THEN debts.amount ELSE 0 END), 0) AS i_owe_them, "+
				"COALESCE(SUM(CASE WHEN debts.is_my_debt = ? THEN debts.amount ELSE 0 END), 0) AS they_owe_me, "+
				"COUNT(debts.id) AS active_debts_count",
			true, false,
		).
		Joins("JOIN contacts ON contacts.id = debts.contact_id").
		Where("contacts.user_id = ? AND debts.is_paid = ?", userID, false).
		Group("debts.contact_id").
		Scan(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "contact", "summaries", "error")
		return nil, err
	}
	out := make(map[uint]domain.DebtSummary, len(rows))
	for _, row := range rows {
		out[row.ContactID] = domain.DebtSummary{
			IOweThem:         row.IOweThem,
			TheyOweMe:        row.TheyOweMe,
			NetBalance:       row.TheyOweMe - row.IOweThem,
			ActiveDebtsCount: row.ActiveDebtsCount,
		}
	}
	observability.RecordRepositoryOperation(ctx, "contact", "summaries", "success")
	return out, nil
}

func (r *GormContactRepository) Update(ctx context.Context, userID, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "contact", "update", "conflict")
			return ErrContactPhoneTaken
		}
		observability.RecordRepositoryOperation(ctx, "contact", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "contact", "update", "not_found")
		return ErrContactNotFound
	}
	observability.RecordRepositoryOperation(ctx, "contact", "update", "success")
	return nil
}

func (r *GormContactRepository) Delete(ctx context.Context, userID, id uint) (int64, error) {
	var deletedDebts int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact domain.Contact
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&contact).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContactNotFound
			}
			return err
		}
		res := tx.Where("contact_id = ?", contact.ID).Delete(&domain.Debt{})
		if res.Error != nil {
			return res.Error
		}
		deletedDebts = res.RowsAffected
		return tx.Delete(&contact).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrContactNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(ctx, "contact", "delete", outcome)
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "contact", "delete", "success")
	return deletedDebts, nil
}

func (r *GormContactRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "contact", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "contact", "count", "success")
	return n, nil
}
