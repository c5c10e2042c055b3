package domain

import "time"

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_contacts_user_phone" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:32;not null;uniqueIndex:idx_contacts_user_phone" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Debts     []Debt    `gorm:"constraint:OnDelete:CASCADE" json:"debts,omitempty"`
}

// DebtSummary aggregates unpaid debts for one contact.
type DebtSummary struct {
	IOweThem         float64 `json:"i_owe_them"`
	TheyOweMe        float64 `json:"they_owe_me"`
	NetBalance       float64 `json:"net_balance"`
	ActiveDebtsCount int64   `json:"active_debts_count"`
}
