package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.OAuthAccount{},
		&domain.VerificationCode{},
		&domain.Contact{},
		&domain.Debt{},
	}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	if err := db.AutoMigrate(Models()...); err != nil {
		observability.RecordDatabaseStartup(context.Background(), "migrate", "error", time.Since(start))
		return fmt.Errorf("auto migrate: %w", err)
	}
	observability.RecordDatabaseStartup(context.Background(), "migrate", "success", time.Since(start))
	return nil
}

type TableStatus struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

func (s TableStatus) UpToDate() bool { return s.Exists && len(s.MissingColumns) == 0 }

// Status compares the live schema against the models without changing it.
func Status(db *gorm.DB) ([]TableStatus, error) {
	migrator := db.Migrator()
	out := make([]TableStatus, 0, len(Models()))
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		status := TableStatus{Table: stmt.Schema.Table, Exists: migrator.HasTable(model)}
		if status.Exists {
			for _, field := range stmt.Schema.Fields {
				if field.DBName == "" || field.IgnoreMigration {
					continue
				}
				if !migrator.HasColumn(model, field.DBName) {
					status.MissingColumns = append(status.MissingColumns, field.DBName)
				}
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// Plan describes what Migrate would do, one line per change.
func Plan(db *gorm.DB) ([]string, error) {
	statuses, err := Status(db)
	if err != nil {
		return nil, err
	}
	var steps []string
	for _, s := range statuses {
		switch {
		case !s.Exists:
			steps = append(steps, "create table "+s.Table)
		default:
			for _, col := range s.MissingColumns {
				steps = append(steps, fmt.Sprintf("add column %s.%s", s.Table, col))
			}
		}
	}
	return steps, nil
}
