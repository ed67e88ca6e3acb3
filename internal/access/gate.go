// Package access decides whether the current user may enter a paid mode.
package access

import (
	"context"
	"fmt"

	"cemap-quiz-service/internal/domain"
	"cemap-quiz-service/internal/payment"
)

// TokenStore persists entitlement tokens keyed by scope. Writes are atomic
// single-key overwrites.
type TokenStore interface {
	Save(ctx context.Context, scope domain.EntitlementScope, token string) error
	Get(ctx context.Context, scope domain.EntitlementScope) (string, bool, error)
}

// Verifier is the payment-verification collaborator.
type Verifier interface {
	Verify(ctx context.Context, paymentRef string) (payment.Verification, error)
}

// Gate checks persisted entitlements and grants new ones after verified
// payments. Entitlement is asserted locally once granted; the verifier is
// only consulted on the redirect back from checkout.
type Gate struct {
	tokens   TokenStore
	verifier Verifier
}

func NewGate(tokens TokenStore, verifier Verifier) *Gate {
	return &Gate{tokens: tokens, verifier: verifier}
}

// CheckAccess reports whether the mode is unlocked. Practice is always free;
// a bundle token unlocks both paid modes. No network call happens here.
func (g *Gate) CheckAccess(ctx context.Context, mode domain.Mode) (bool, error) {
	scope, paid := domain.ScopeFor(mode)
	if !paid {
		return true, nil
	}

	if _, ok, err := g.tokens.Get(ctx, scope); err != nil {
		return false, fmt.Errorf("read %s token: %w", scope, err)
	} else if ok {
		return true, nil
	}

	_, ok, err := g.tokens.Get(ctx, domain.ScopeBundle)
	if err != nil {
		return false, fmt.Errorf("read bundle token: %w", err)
	}
	return ok, nil
}

// GrantFromPayment is the only path that can create a token. A negative or
// malformed verification persists nothing and fails with ErrVerificationFailed.
// Safe to repeat for the same reference.
func (g *Gate) GrantFromPayment(ctx context.Context, paymentRef string) (domain.EntitlementScope, error) {
	verification, err := g.verifier.Verify(ctx, paymentRef)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	if !verification.Verified || verification.AccessToken == "" {
		return "", domain.ErrVerificationFailed
	}

	scope, ok := domain.ParseScope(verification.PurchaseType)
	if !ok {
		return "", domain.ErrVerificationFailed
	}

	if err := g.tokens.Save(ctx, scope, verification.AccessToken); err != nil {
		return "", fmt.Errorf("persist %s token: %w", scope, err)
	}
	return scope, nil
}
