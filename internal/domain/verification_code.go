package domain

import "time"

type CodePurpose string

const (
	CodePurposeEmailVerification CodePurpose = "email_verification"
	CodePurposePasswordReset     CodePurpose = "password_reset"
)

func (p CodePurpose) Valid() bool {
	switch p {
	case CodePurposeEmailVerification, CodePurposePasswordReset:
		return true
	default:
		return false
	}
}

type VerificationCode struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Email     string      `gorm:"size:255;not null;index:idx_verification_codes_email_purpose" json:"email"`
	Code      string      `gorm:"size:6;not null" json:"-"`
	Purpose   CodePurpose `gorm:"size:32;not null;index:idx_verification_codes_email_purpose" json:"purpose"`
	ExpiresAt time.Time   `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time  `gorm:"index" json:"used_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (c *VerificationCode) Used() bool {
	return c.UsedAt != nil
}

func (c *VerificationCode) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
