package ports

import (
	"context"
	"time"

	"electra/contexts/finance-core/wallet-ledger/domain/entities"
)

// AccountStore persists wallet balances. SaveAccounts must apply all rows
// atomically: the transfer primitive relies on debit and credit landing
// together or not at all.
type AccountStore interface {
	GetAccount(ctx context.Context, accountID string) (entities.Account, bool, error)
	SaveAccounts(ctx context.Context, accounts ...entities.Account) error
	ListAccounts(ctx context.Context) ([]entities.Account, error)
}

// StepStore persists the monotonic step counter advanced by administrator
// transitions.
type StepStore interface {
	CurrentStep(ctx context.Context) (int64, error)
	SaveStep(ctx context.Context, step int64) error
}

type Clock interface {
	Now() time.Time
}
