package domain

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string     `gorm:"size:100;not null" json:"fullname"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasPassword is false for accounts created through Google sign-in until a reset sets one.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
