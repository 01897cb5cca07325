package devicecode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/cmdstash/cmdstash/internal/auth"
)

// codeTTL is how long an issued code stays redeemable.
const codeTTL = 10 * time.Minute

// maxIssueAttempts bounds generation retries on code collisions.
const maxIssueAttempts = 20

// TokenSource resolves the bearer token bound to a redeemed code.
type TokenSource interface {
	GetTokenByID(ctx context.Context, id uuid.UUID) (*auth.Token, error)
}

// Broker issues and redeems device codes. A code is six uniformly random
// ASCII digits valid for ten minutes and redeemable exactly once.
type Broker struct {
	repo   Repository
	tokens TokenSource
	now    func() time.Time
}

// NewBroker creates a new Broker.
func NewBroker(repo Repository, tokens TokenSource) *Broker {
	return &Broker{
		repo:   repo,
		tokens: tokens,
		now:    time.Now,
	}
}

// Issue creates a fresh code bound to the given bearer token, retrying
// generation until it finds an unused value.
func (b *Broker) Issue(ctx context.Context, tokenID uuid.UUID) (*Code, error) {
	expiresAt := b.now().UTC().Add(codeTTL)

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		value, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generating code: %w", err)
		}

		code := &Code{
			Code:      value,
			TokenID:   tokenID,
			ExpiresAt: expiresAt,
		}

		err = b.repo.Insert(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrCodeExists) {
			return nil, fmt.Errorf("storing code: %w", err)
		}
	}

	return nil, errors.New("exhausted device code generation attempts")
}

// Redeem consumes the code and returns the bound token's secret value.
// Unknown codes yield ErrNotFound; consumed or expired codes yield their
// terminal errors and the code stays un-redeemable forever.
func (b *Broker) Redeem(ctx context.Context, code string) (string, error) {
	tokenID, err := b.repo.Consume(ctx, code, b.now().UTC())
	if err != nil {
		return "", err
	}

	token, err := b.tokens.GetTokenByID(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("resolving bound token: %w", err)
	}

	return token.Value, nil
}

// generateCode draws six digits uniformly at random.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
