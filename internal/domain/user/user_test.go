package user

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBalancePolicy_InitialBalance(t *testing.T) {
	policy := BalancePolicy{
		RoleUser:  40,
		RoleAgent: 10000,
	}

	tests := []struct {
		role string
		want int64
	}{
		{RoleUser, 40},
		{RoleAgent, 10000},
		{"intern", 0}, // unknown roles default to zero
		{"", 0},
	}

	for _, tt := range tests {
		got := policy.InitialBalance(tt.role)

		if got != tt.want {
			t.Errorf("InitialBalance(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestNewFromPending_CarriesIdentityFields(t *testing.T) {
	req := RegisterRequest{
		Name:   "Amina",
		Email:  "amina@example.com",
		Pin:    "1234",
		Mobile: "01700000000",
		Role:   RoleUser,
	}

	p := NewPendingFromRegisterRequest(req, "hashed-pin")

	if p.Status != StatusPending {
		t.Fatalf("pending status = %q, want %q", p.Status, StatusPending)
	}
	if p.ID == "" {
		t.Fatalf("pending user got no id")
	}

	u := NewFromPending(p, 40)

	if u.ID != p.ID || u.Email != p.Email || u.PinHash != p.PinHash || u.Mobile != p.Mobile || u.Role != p.Role {
		t.Fatalf("approval must carry identity fields over unchanged: got %+v from %+v", u, p)
	}
	if u.Status != StatusApproved {
		t.Errorf("approved status = %q, want %q", u.Status, StatusApproved)
	}
	if u.Balance != 40 {
		t.Errorf("balance = %d, want 40", u.Balance)
	}
	if !u.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("createdAt must survive approval")
	}
}

func TestUserJSON_NeverExposesPinHash(t *testing.T) {
	u := User{
		ID:      "u1",
		Email:   "a@x.com",
		PinHash: "$2a$10$secret",
	}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "pinHash") {
		t.Fatalf("user JSON leaked the pin hash: %s", b)
	}
}
