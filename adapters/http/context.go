package http

import (
	"context"

	"github.com/creditgate/creditgate/domain/credit"
)

type contextKey int

const accountKey contextKey = iota

// WithAccount stores the authorized account snapshot in the request context.
func WithAccount(ctx context.Context, acct credit.Account) context.Context {
	return context.WithValue(ctx, accountKey, acct)
}

// AccountFrom retrieves the authorized account from the request context.
// The second return is false on allow-listed requests, which never pass
// through the gate.
func AccountFrom(ctx context.Context) (credit.Account, bool) {
	acct, ok := ctx.Value(accountKey).(credit.Account)
	return acct, ok
}
