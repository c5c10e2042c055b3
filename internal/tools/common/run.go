package common

import (
	"context"
	"time"

	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
)

// Action is one tool command body. It returns human readable detail lines.
type Action func(ctx context.Context) ([]string, error)

// Interactive renders an action for a terminal; ui.Run satisfies it.
type Interactive func(title string, timeout time.Duration, fn Action) ([]string, error)

type Runner struct {
	Tool    string
	CI      bool
	Timeout time.Duration
	UI      Interactive
}

// Run executes fn under the runner's timeout and records the outcome.
// CI mode, or a runner without a UI, skips the terminal renderer.
func (r Runner) Run(command string, fn Action) ([]string, error) {
	start := time.Now()
	var (
		details []string
		err     error
	)
	if r.CI || r.UI == nil {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
		details, err = fn(ctx)
		cancel()
	} else {
		details, err = r.UI(r.Tool+" "+command, r.timeout(), fn)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommand(context.Background(), r.Tool, command, outcome, time.Since(start))
	return details, err
}

func (r Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return 2 * time.Minute
	}
	return r.Timeout
}
