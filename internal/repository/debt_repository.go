package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

var ErrDebtNotFound = errors.New("debt not found")

// DebtFilter narrows a debt listing. Nil fields do not filter.
type DebtFilter struct {
	IsPaid    *bool
	IsMyDebt  *bool
	ContactID *uint
}

type DebtRepository interface {
	Create(ctx context.Context, debt *domain.Debt) error
	FindByIDForUser(ctx context.Context, userID, id uint) (*domain.Debt, error)
	ListForUser(ctx context.Context, userID uint, filter DebtFilter, req PageRequest) (PageResult[domain.Debt], error)
	ListAllForUser(ctx context.Context, userID uint, filter DebtFilter) ([]domain.Debt, error)
	ListByContact(ctx context.Context, contactID uint) ([]domain.Debt, error)
	Recent(ctx context.Context, userID uint, limit int) ([]domain.Debt, error)
	Overview(ctx context.Context, userID uint) (domain.DebtOverview, error)
	Update(ctx context.Context, userID, id uint, updates map[string]any) error
	Delete(ctx context.Context, userID, id uint) error
}

type GormDebtRepository struct{ db *gorm.DB }

func NewDebtRepository(db *gorm.DB) DebtRepository {
	return &GormDebtRepository{db: db}
}

const debtWithContactColumns = "debts.*, contacts.name AS contact_name"

func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN contacts ON contacts.id = debts.contact_id").Where("contacts.user_id = ?", userID)
	}
}

func (f DebtFilter) scope(db *gorm.DB) *gorm.DB {
	if f.IsPaid != nil {
		db = db.Where("debts.is_paid = ?", *f.IsPaid)
	}
	if f.IsMyDebt != nil {
		db = db.Where("debts.is_my_debt = ?", *f.IsMyDebt)
	}
	if f.ContactID != nil {
		db = db.Where("debts.contact_id = ?", *f.ContactID)
	}
	return db
}

// ownedIDs is a subquery of contact ids owned by userID, for statements that cannot join.
func (r *GormDebtRepository) ownedIDs(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Contact{}).Select("id").Where("user_id = ?", userID)
}

func (r *GormDebtRepository) Create(ctx context.Context, debt *domain.Debt) error {
	if err := r.db.WithContext(ctx).Create(debt).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "create", "success")
	return nil
}

func (r *GormDebtRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*domain.Debt, error) {
	var debt domain.Debt
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(debtWithContactColumns).
		Scopes(ownedBy(userID)).
		Where("debts.id = ?", id).
		Take(&debt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "debt", "find_by_id", "not_found")
			return nil, ErrDebtNotFound
		}
		observability.RecordRepositoryOperation(ctx, "debt", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "find_by_id", "success")
	return &debt, nil
}

func (r *GormDebtRepository) ListForUser(ctx context.Context, userID uint, filter DebtFilter, req PageRequest) (PageResult[domain.Debt], error) {
	req = req.Clamp()
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Debt{}).Scopes(ownedBy(userID), filter.scope).Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "list_paged", "error")
		return PageResult[domain.Debt]{}, err
	}
	var debts []domain.Debt
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(debtWithContactColumns).
		Scopes(ownedBy(userID), filter.scope, req.scope).
		Order("debts.created_at desc, debts.id desc").
		Find(&debts).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "list_paged", "error")
		return PageResult[domain.Debt]{}, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "list_paged", "success")
	return newPageResult(req, total, debts), nil
}

func (r *GormDebtRepository) ListAllForUser(ctx context.Context, userID uint, filter DebtFilter) ([]domain.Debt, error) {
	var debts []domain.Debt
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(debtWithContactColumns).
		Scopes(ownedBy(userID), filter.scope).
		Order("debts.created_at asc, debts.id asc").
		Find(&debts).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "list_all", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "list_all", "success")
	return debts, nil
}

func (r *GormDebtRepository) ListByContact(ctx context.Context, contactID uint) ([]domain.Debt, error) {
	var debts []domain.Debt
	if err := r.db.WithContext(ctx).Where("contact_id = ?", contactID).Order("created_at desc, id desc").Find(&debts).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "list_by_contact", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "list_by_contact", "success")
	return debts, nil
}

func (r *GormDebtRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.Debt, error) {
	var debts []domain.Debt
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(debtWithContactColumns).
		Scopes(ownedBy(userID)).
		Order("debts.created_at desc, debts.id desc").
		Limit(limit).
		Find(&debts).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "recent", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "recent", "success")
	return debts, nil
}

type overviewRow struct {
	IOwe             float64 `gorm:"column:i_owe"`
	TheyOweMe        float64 `gorm:"column:they_owe_me"`
	ActiveDebtsCount int64   `gorm:"column:active_debts_count"`
	PaidDebtsCount   int64   `gorm:"column:paid_debts_count"`
}

func (r *GormDebtRepository) Overview(ctx context.Context, userID uint) (domain.DebtOverview, error) {
	var row overviewRow
	err := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Select(
			"COALESCE(SUM(CASE WHEN debts.is_paid = ? AND debts.is_my_debt = ? THEN debts.amount ELSE 0 END), 0) AS i_owe, "+
				"COALESCE(SUM(CASE WHEN debts.is_paid = ? AND debts.is_my_debt = ? THEN debts.amount ELSE 0 END), 0) AS they_owe_me, "+
				"COALESCE(SUM(CASE WHEN debts.is_paid = ? THEN 1 ELSE 0 END), 0) AS active_debts_count, "+
				"COALESCE(SUM(CASE WHEN debts.is_paid = ? THEN 1 ELSE 0 END), 0) AS paid_debts_count",
			false, true, false, false, false, true,
		).
		Scopes(ownedBy(userID)).
		Scan(&row).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "overview", "error")
		return domain.DebtOverview{}, err
	}
	var contacts int64
	if err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("user_id = ?", userID).Count(&contacts).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "overview", "error")
		return domain.DebtOverview{}, err
	}
	observability.RecordRepositoryOperation(ctx, "debt", "overview", "success")
	return domain.DebtOverview{
		IOwe:             row.IOwe,
		TheyOweMe:        row.TheyOweMe,
		NetBalance:       row.TheyOweMe - row.IOwe,
		ActiveDebtsCount: row.ActiveDebtsCount,
		PaidDebtsCount:   row.PaidDebtsCount,
		TotalContacts:    contacts,
	}, nil
}

func (r *GormDebtRepository) Update(ctx context.Context, userID, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Debt{}).
		Where("id = ? AND contact_id IN (?)", id, r.ownedIDs(ctx, userID)).
		Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "debt", "update", "not_found")
		return ErrDebtNotFound
	}
	observability.RecordRepositoryOperation(ctx, "debt", "update", "success")
	return nil
}

func (r *GormDebtRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND contact_id IN (?)", id, r.ownedIDs(ctx, userID)).
		Delete(&domain.Debt{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "debt", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "debt", "delete", "not_found")
		return ErrDebtNotFound
	}
	observability.RecordRepositoryOperation(ctx, "debt", "delete", "success")
	return nil
}
