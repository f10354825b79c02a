package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"procurepay/internal/model"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test_secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSessionLifecycle(t *testing.T) {
	s := New()
	if s.Active() {
		t.Fatal("zero session should be anonymous")
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Token() err = %v", err)
	}

	raw := signToken(t, jwt.MapClaims{
		"sub":  "7",
		"role": "approver1",
		"name": "Dana",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	if err := s.SetToken(raw); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if !s.Active() {
		t.Fatal("session should be active after SetToken")
	}
	if s.Role() != model.RoleApproverL1 {
		t.Errorf("Role = %s", s.Role())
	}
	if s.Name() != "Dana" {
		t.Errorf("Name = %s", s.Name())
	}
	got, err := s.Token()
	if err != nil || got != raw {
		t.Errorf("Token() = %q, %v", got, err)
	}

	s.Clear()
	if s.Active() {
		t.Fatal("session should be anonymous after Clear")
	}
}

func TestSessionExpiry(t *testing.T) {
	s := New()
	raw := signToken(t, jwt.MapClaims{
		"sub":  "7",
		"role": "staff",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	if err := s.SetToken(raw); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expired token: err = %v", err)
	}
	// Expiry clears the session entirely.
	if s.Role() != "" {
		t.Errorf("Role after expiry = %s", s.Role())
	}
}

func TestSetTokenRejectsGarbage(t *testing.T) {
	s := New()
	if err := s.SetToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestSaveLoadForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	raw := signToken(t, jwt.MapClaims{
		"sub":  "1",
		"role": "finance",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	s := New()
	if err := s.SetToken(raw); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := New()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Role() != model.RoleFinance {
		t.Errorf("restored role = %s", restored.Role())
	}

	if err := Forget(path); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	fresh := New()
	if err := fresh.Load(path); err != nil {
		t.Fatalf("Load after Forget: %v", err)
	}
	if fresh.Active() {
		t.Error("session should stay anonymous after Forget")
	}
}
