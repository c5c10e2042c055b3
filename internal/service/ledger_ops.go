package service

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

// observeLedger records one contact or debt operation, as a metric and as an
// event on the request span, with an outcome derived from err.
func observeLedger(ctx context.Context, entity, op string, start time.Time, err error) {
	outcome := ledgerOutcome(err)
	observability.RecordLedgerOperation(ctx, entity, op, outcome, time.Since(start))
	observability.RecordSpanOutcome(ctx, "ledger."+entity+"."+op, outcome, err)
}

func ledgerOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsValidation(err):
		return "invalid"
	case errors.Is(err, ErrContactNotFound), errors.Is(err, ErrDebtNotFound):
		return "not_found"
	case errors.Is(err, ErrPhoneTaken):
		return "conflict"
	default:
		return "error"
	}
}
