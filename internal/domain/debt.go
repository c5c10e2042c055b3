package domain

import "time"

type Debt struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ContactID   uint       `gorm:"not null;index" json:"contact_id"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Description string     `gorm:"size:255" json:"description"`
	IsPaid      bool       `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	IsMyDebt    bool       `gorm:"not null;default:false" json:"is_my_debt"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ContactName string     `gorm:"->;-:migration" json:"contact_name,omitempty"`
}

type DebtOverview struct {
	IOwe             float64 `json:"i_owe"`
	TheyOweMe        float64 `json:"they_owe_me"`
	NetBalance       float64 `json:"net_balance"`
	ActiveDebtsCount int64   `json:"active_debts_count"`
	PaidDebtsCount   int64   `json:"paid_debts_count"`
	TotalContacts    int64   `json:"total_contacts"`
}
