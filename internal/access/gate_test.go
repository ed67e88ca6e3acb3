package access_test

import (
	"context"
	"errors"
	"testing"

	"cemap-quiz-service/internal/access"
	"cemap-quiz-service/internal/domain"
	"cemap-quiz-service/internal/infra/memory"
	"cemap-quiz-service/internal/payment"
)

func newGate(grants map[string]payment.Verification) (*access.Gate, *memory.TokenStore) {
	tokens := memory.NewTokenStore()
	gate := access.NewGate(tokens, &payment.StaticVerifier{Grants: grants})
	return gate, tokens
}

func TestPracticeIsAlwaysFree(t *testing.T) {
	gate, _ := newGate(nil)

	ok, err := gate.CheckAccess(context.Background(), domain.ModePractice)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !ok {
		t.Fatalf("practice mode must not require an entitlement")
	}
}

func TestPaidModesLockedByDefault(t *testing.T) {
	gate, _ := newGate(nil)
	ctx := context.Background()

	for _, mode := range []domain.Mode{domain.ModeExam, domain.ModeScenario} {
		ok, err := gate.CheckAccess(ctx, mode)
		if err != nil {
			t.Fatalf("check %s failed: %v", mode, err)
		}
		if ok {
			t.Fatalf("%s must be locked without a token", mode)
		}
	}
}

func TestGrantUnlocksMatchingScope(t *testing.T) {
	gate, _ := newGate(map[string]payment.Verification{
		"pi_exam": {Verified: true, AccessToken: "tok-exam", PurchaseType: "exam"},
	})
	ctx := context.Background()

	scope, err := gate.GrantFromPayment(ctx, "pi_exam")
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if scope != domain.ScopeExam {
		t.Fatalf("expected exam scope, got %s", scope)
	}

	if ok, _ := gate.CheckAccess(ctx, domain.ModeExam); !ok {
		t.Fatalf("exam should be unlocked after grant")
	}
	if ok, _ := gate.CheckAccess(ctx, domain.ModeScenario); ok {
		t.Fatalf("an exam token must not unlock scenario mode")
	}
}

func TestBundleUnlocksBothPaidModes(t *testing.T) {
	gate, _ := newGate(map[string]payment.Verification{
		"pi_bundle": {Verified: true, AccessToken: "tok-bundle", PurchaseType: "bundle"},
	})
	ctx := context.Background()

	if _, err := gate.GrantFromPayment(ctx, "pi_bundle"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if ok, _ := gate.CheckAccess(ctx, domain.ModeExam); !ok {
		t.Fatalf("bundle should unlock exam")
	}
	if ok, _ := gate.CheckAccess(ctx, domain.ModeScenario); !ok {
		t.Fatalf("bundle should unlock scenario")
	}
}

func TestFailedVerificationPersistsNothing(t *testing.T) {
	gate, tokens := newGate(map[string]payment.Verification{
		"pi_noscope": {Verified: true, AccessToken: "tok", PurchaseType: "lifetime"},
		"pi_notoken": {Verified: true, PurchaseType: "exam"},
	})
	ctx := context.Background()

	cases := []string{"pi_unknown", "pi_noscope", "pi_notoken"}
	for _, ref := range cases {
		if _, err := gate.GrantFromPayment(ctx, ref); !errors.Is(err, domain.ErrVerificationFailed) {
			t.Fatalf("%s: expected verification failure, got %v", ref, err)
		}
	}

	for _, scope := range []domain.EntitlementScope{domain.ScopeExam, domain.ScopeScenario, domain.ScopeBundle} {
		if _, ok, _ := tokens.Get(ctx, scope); ok {
			t.Fatalf("failed verification must not persist a %s token", scope)
		}
	}
}

func TestGrantIsRepeatable(t *testing.T) {
	gate, _ := newGate(map[string]payment.Verification{
		"pi_exam": {Verified: true, AccessToken: "tok-exam", PurchaseType: "exam"},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		scope, err := gate.GrantFromPayment(ctx, "pi_exam")
		if err != nil || scope != domain.ScopeExam {
			t.Fatalf("attempt %d: got %s, %v", i, scope, err)
		}
	}
}
