package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
)

const codeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// CodeGenerator produces zero-padded 6-digit codes with a per-purpose lifetime.
type CodeGenerator struct {
	ttls map[domain.CodePurpose]time.Duration
	now  func() time.Time
}

func NewCodeGenerator(emailTTL, resetTTL time.Duration) *CodeGenerator {
	return &CodeGenerator{
		ttls: map[domain.CodePurpose]time.Duration{
			domain.CodePurposeEmailVerification: emailTTL,
			domain.CodePurposePasswordReset:     resetTTL,
		},
		now: time.Now,
	}
}

func (g *CodeGenerator) WithClock(now func() time.Time) *CodeGenerator {
	cp := *g
	cp.now = now
	return &cp
}

func (g *CodeGenerator) Now() time.Time { return g.now().UTC() }

func (g *CodeGenerator) TTL(purpose domain.CodePurpose) time.Duration { return g.ttls[purpose] }

func (g *CodeGenerator) Generate(purpose domain.CodePurpose) (string, time.Time, error) {
	ttl, ok := g.ttls[purpose]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown code purpose %q", purpose)
	}
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), g.Now().Add(ttl), nil
}
