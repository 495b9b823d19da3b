// Package credit provides the authorization decision value types and pure
// credential handling functions. This package has NO dependencies on I/O or
// external packages.
package credit

import (
	"strings"
	"time"
)

// Reason identifies why a presented credential was rejected.
type Reason string

const (
	ReasonInvalidKey          Reason = "invalid_api_key"
	ReasonInsufficientCredits Reason = "insufficient_credits"
	ReasonDeductionFailed     Reason = "deduction_failed"
)

// State is the outcome class of an authorization attempt.
type State int

const (
	// StateUnauthenticated means no credential was presented at all.
	StateUnauthenticated State = iota
	// StateRejected means a credential was presented but did not clear the gate.
	StateRejected
	// StateAuthorized means the account was found and one credit was deducted.
	StateAuthorized
)

// Account is a snapshot of the account behind an API key (immutable value type).
// After an authorized decision, Credits holds the post-decrement balance.
type Account struct {
	ID        string
	Email     string
	APIKey    string
	Credits   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decision is the outcome of the credit gate for one request.
type Decision struct {
	State   State
	Reason  Reason  // set when State == StateRejected
	Account Account // set when State == StateAuthorized
}

// Unauthenticated returns the decision for a request with no credential.
func Unauthenticated() Decision {
	return Decision{State: StateUnauthenticated}
}

// Reject returns the decision for a credential that did not clear the gate.
func Reject(reason Reason) Decision {
	return Decision{State: StateRejected, Reason: reason}
}

// Authorize returns the decision for a successfully charged account.
func Authorize(acct Account) Decision {
	return Decision{State: StateAuthorized, Account: acct}
}

// MsgKeyRequired is the error message for requests with no credential.
const MsgKeyRequired = "API key required. Include X-API-Key header or Authorization: Bearer <key>"

// Status maps a decision to its HTTP status code. Insufficient credits is the
// only rejection that maps to 402; everything else fails closed with 401.
func (d Decision) Status() int {
	switch d.State {
	case StateAuthorized:
		return 200
	case StateRejected:
		if d.Reason == ReasonInsufficientCredits {
			return 402
		}
		return 401
	default:
		return 401
	}
}

// Message returns the human-readable error for a non-authorized decision.
func (d Decision) Message() string {
	switch d.State {
	case StateUnauthenticated:
		return MsgKeyRequired
	case StateRejected:
		switch d.Reason {
		case ReasonInsufficientCredits:
			return "Insufficient credits"
		case ReasonDeductionFailed:
			return "Failed to deduct credit"
		default:
			return "Invalid API key"
		}
	}
	return ""
}

const bearerPrefix = "Bearer "

// ExtractKey resolves the raw credential from the two supported headers
// (pure function). X-API-Key wins; otherwise the Authorization value is used,
// with a literal case-sensitive "Bearer " prefix stripped when present.
func ExtractKey(xAPIKey, authorization string) string {
	if xAPIKey != "" {
		return xAPIKey
	}
	if strings.HasPrefix(authorization, bearerPrefix) {
		return authorization[len(bearerPrefix):]
	}
	return authorization
}
