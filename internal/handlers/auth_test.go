package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestResolveRole(t *testing.T) {
	cases := []struct {
		name       string
		requested  string
		email      string
		ownerEmail string
		want       string
	}{
		{"owner email always admin", "", "owner@example.com", "owner@example.com", models.RoleAdmin},
		{"requested admin honored", "admin", "a@example.com", "owner@example.com", models.RoleAdmin},
		{"default is customer", "", "a@example.com", "owner@example.com", models.RoleCustomer},
		{"unknown role falls back", "superuser", "a@example.com", "", models.RoleCustomer},
		{"no owner configured", "", "a@example.com", "", models.RoleCustomer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveRole(tc.requested, tc.email, tc.ownerEmail); got != tc.want {
				t.Fatalf("resolveRole(%q, %q, %q) = %q, want %q", tc.requested, tc.email, tc.ownerEmail, got, tc.want)
			}
		})
	}
}

func TestHashToken_DeterministicHex(t *testing.T) {
	a := hashToken("some-token")
	b := hashToken("some-token")
	if a != b {
		t.Fatal("hashToken must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if hashToken("other-token") == a {
		t.Fatal("distinct tokens must not collide")
	}
}

func TestGenerateRefreshString(t *testing.T) {
	a := generateRefreshString()
	b := generateRefreshString()
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected 64 hex chars, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Fatal("refresh strings must be random")
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("Phone"); got != "phone" {
		t.Fatalf("expected phone, got %q", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
