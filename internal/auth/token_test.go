package auth

import (
	"testing"

	"github.com/byZeet/centralita-neron/internal/domain"
)

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, expiresAt, err := tm.GenerateToken(7, domain.OperatorRoleAdmin)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if expiresAt.IsZero() {
			t.Error("expected an expiry")
		}

		claims, err := tm.ParseToken(token)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if claims.OperatorID != 7 {
			t.Errorf("expected operator 7, got %d", claims.OperatorID)
		}
		if claims.Role != domain.OperatorRoleAdmin {
			t.Errorf("expected admin, got %s", claims.Role)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token, _, err := tm.GenerateToken(7, domain.OperatorRoleUser)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		other := NewTokenManager("other-secret", 60)
		if _, err := other.ParseToken(token); err == nil {
			t.Error("expected a verification error")
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := tm.ParseToken("not-a-token"); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "secret"); err != nil {
		t.Errorf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("expected mismatch")
	}
}
