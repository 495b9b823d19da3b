package credit_test

import (
	"testing"

	"github.com/creditgate/creditgate/domain/credit"
)

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name    string
		xAPIKey string
		auth    string
		want    string
	}{
		{"x-api-key only", "key123", "", "key123"},
		{"x-api-key wins over authorization", "key123", "Bearer other", "key123"},
		{"bearer prefix stripped", "", "Bearer key123", "key123"},
		{"no bearer prefix uses whole value", "", "key123", "key123"},
		{"lowercase bearer not stripped", "", "bearer key123", "bearer key123"},
		{"bearer without space not stripped", "", "Bearerkey123", "Bearerkey123"},
		{"empty headers", "", "", ""},
		{"bearer with empty token", "", "Bearer ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := credit.ExtractKey(tt.xAPIKey, tt.auth)
			if got != tt.want {
				t.Errorf("ExtractKey(%q, %q) = %q, want %q", tt.xAPIKey, tt.auth, got, tt.want)
			}
		})
	}
}

func TestDecision_Status(t *testing.T) {
	tests := []struct {
		name     string
		decision credit.Decision
		want     int
	}{
		{"unauthenticated", credit.Unauthenticated(), 401},
		{"invalid key", credit.Reject(credit.ReasonInvalidKey), 401},
		{"insufficient credits", credit.Reject(credit.ReasonInsufficientCredits), 402},
		{"deduction failed", credit.Reject(credit.ReasonDeductionFailed), 401},
		{"authorized", credit.Authorize(credit.Account{ID: "a1"}), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecision_Message(t *testing.T) {
	tests := []struct {
		name     string
		decision credit.Decision
		want     string
	}{
		{"unauthenticated", credit.Unauthenticated(), credit.MsgKeyRequired},
		{"invalid key", credit.Reject(credit.ReasonInvalidKey), "Invalid API key"},
		{"insufficient credits", credit.Reject(credit.ReasonInsufficientCredits), "Insufficient credits"},
		{"deduction failed", credit.Reject(credit.ReasonDeductionFailed), "Failed to deduct credit"},
		{"authorized has no message", credit.Authorize(credit.Account{ID: "a1"}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorize_CarriesAccount(t *testing.T) {
	acct := credit.Account{ID: "a1", Email: "dev@example.com", Credits: 9}
	d := credit.Authorize(acct)

	if d.State != credit.StateAuthorized {
		t.Errorf("State = %v, want StateAuthorized", d.State)
	}
	if d.Account.ID != "a1" || d.Account.Credits != 9 {
		t.Errorf("Account = %+v, want the authorized snapshot", d.Account)
	}
}
