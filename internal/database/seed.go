package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

var ErrSeedEmailRequired = errors.New("seed email is required")

type DemoSeedInput struct {
	Email        string
	FullName     string
	PasswordHash string
}

type DemoSeedReport struct {
	UserID          uint `json:"user_id"`
	CreatedUser     bool `json:"created_user"`
	CreatedContacts int  `json:"created_contacts"`
	CreatedDebts    int  `json:"created_debts"`
	Noop            bool `json:"noop"`
}

type demoContact struct {
	name  string
	phone string
	debts []domain.Debt
}

var demoContacts = []demoContact{
	{
		name:  "Alice Johnson",
		phone: "+15550100001",
		debts: []domain.Debt{
			{Amount: 45.50, Description: "Dinner at the Italian place", IsMyDebt: true},
			{Amount: 120, Description: "Concert tickets"},
		},
	},
	{
		name:  "Bob Smith",
		phone: "+15550100002",
		debts: []domain.Debt{
			{Amount: 20, Description: "Taxi fare", IsMyDebt: true, IsPaid: true},
		},
	},
}

// SeedDemo creates a verified demo user with a couple of contacts and debts.
// Rows that already exist are left untouched, so reruns are no-ops.
func SeedDemo(ctx context.Context, db *gorm.DB, in DemoSeedInput) (*DemoSeedReport, error) {
	if in.Email == "" {
		return nil, ErrSeedEmailRequired
	}
	start := time.Now()
	report := &DemoSeedReport{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		user := domain.User{
			Email:        in.Email,
			FullName:     in.FullName,
			PasswordHash: in.PasswordHash,
			IsVerified:   true,
			VerifiedAt:   &now,
		}
		res := tx.Where("email = ?", in.Email).FirstOrCreate(&user)
		if res.Error != nil {
			return fmt.Errorf("seed user: %w", res.Error)
		}
		report.UserID = user.ID
		report.CreatedUser = res.RowsAffected > 0

		for _, dc := range demoContacts {
			contact := domain.Contact{UserID: user.ID, Name: dc.name, Phone: dc.phone}
			res := tx.Where("user_id = ? AND phone = ?", user.ID, dc.phone).FirstOrCreate(&contact)
			if res.Error != nil {
				return fmt.Errorf("seed contact %s: %w", dc.phone, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			report.CreatedContacts++
			for _, d := range dc.debts {
				debt := d
				debt.ContactID = contact.ID
				if debt.IsPaid {
					debt.PaidAt = &now
				}
				if err := tx.Create(&debt).Error; err != nil {
					return fmt.Errorf("seed debt: %w", err)
				}
				report.CreatedDebts++
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordDatabaseStartup(ctx, "seed", "error", time.Since(start))
		return nil, err
	}
	report.Noop = !report.CreatedUser && report.CreatedContacts == 0
	observability.RecordDatabaseStartup(ctx, "seed", "success", time.Since(start))
	return report, nil
}
