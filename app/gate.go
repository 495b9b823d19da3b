// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"

	"github.com/creditgate/creditgate/domain/credit"
	"github.com/creditgate/creditgate/ports"
	"github.com/rs/zerolog"
)

// GateService is the credit gate: it resolves a presented API key to an
// account and atomically charges one credit.
type GateService struct {
	accounts ports.AccountStore
	logger   zerolog.Logger
}

// NewGateService creates a new credit gate.
func NewGateService(accounts ports.AccountStore, logger zerolog.Logger) *GateService {
	return &GateService{
		accounts: accounts,
		logger:   logger,
	}
}

// Authorize validates the raw credential and charges one credit.
//
// Exactly one credit is removed on an authorized decision; zero credits are
// removed on any other decision. The decrement is a single conditional store
// operation: two concurrent requests sharing a key with one credit left can
// never both succeed.
func (s *GateService) Authorize(ctx context.Context, rawKey string) credit.Decision {
	// No credential: reject before any store access.
	if rawKey == "" {
		return credit.Unauthenticated()
	}

	acct, err := s.accounts.GetByKey(ctx, rawKey)
	if errors.Is(err, ports.ErrNotFound) {
		return credit.Reject(credit.ReasonInvalidKey)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("account lookup failed")
		return credit.Reject(credit.ReasonDeductionFailed)
	}

	newBalance, err := s.accounts.DecrementIfPositive(ctx, acct.ID)
	if errors.Is(err, ports.ErrInsufficientCredits) {
		return credit.Reject(credit.ReasonInsufficientCredits)
	}
	if err != nil {
		// Fail closed. No retry: if the write landed but the ack was lost, a
		// retry would double-charge. The caller retries the whole request.
		s.logger.Error().Err(err).Str("account_id", acct.ID).Msg("credit deduction failed")
		return credit.Reject(credit.ReasonDeductionFailed)
	}

	acct.Credits = newBalance
	return credit.Authorize(acct)
}
