package application

import (
	"context"
	"log/slog"
	"sync"

	domainerrors "electra/contexts/finance-core/wallet-ledger/domain/errors"
	"electra/contexts/finance-core/wallet-ledger/domain/entities"
	"electra/contexts/finance-core/wallet-ledger/ports"
)

// LedgerService owns wallet balances and the administrator step counter.
// A single mutex serializes every operation, so a transfer observes both
// balances at once and writes both or neither.
type LedgerService struct {
	mu sync.Mutex

	Accounts ports.AccountStore
	Steps    ports.StepStore
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (s *LedgerService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Deposit credits an account, creating it on first use.
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount int64) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountID == "" {
		return entities.Account{}, domainerrors.ErrInvalidAccount
	}
	if amount <= 0 {
		return entities.Account{}, domainerrors.ErrInvalidAmount
	}

	account, _, err := s.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return entities.Account{}, err
	}
	account.AccountID = accountID
	account.Balance += amount
	account.UpdatedAt = s.Clock.Now()
	if err := s.Accounts.SaveAccounts(ctx, account); err != nil {
		return entities.Account{}, err
	}

	s.logger().InfoContext(ctx, "wallet deposit applied",
		slog.String("event", "wallet_deposit_applied"),
		slog.String("module", "wallet-ledger"),
		slog.String("account", accountID),
		slog.Int64("amount", amount),
		slog.Int64("balance", account.Balance),
	)
	return account, nil
}

// Balance reports the current balance. Unknown accounts read as zero.
func (s *LedgerService) Balance(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountID == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	account, _, err := s.Accounts.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Transfer moves amount between two accounts atomically. It fails with no
// effect when the source cannot cover the amount.
func (s *LedgerService) Transfer(ctx context.Context, from string, to string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == "" || to == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount <= 0 {
		return domainerrors.ErrInvalidAmount
	}
	if from == to {
		return nil
	}

	source, found, err := s.Accounts.GetAccount(ctx, from)
	if err != nil {
		return err
	}
	if !found || source.Balance < amount {
		return domainerrors.ErrInsufficientFunds
	}
	dest, _, err := s.Accounts.GetAccount(ctx, to)
	if err != nil {
		return err
	}

	now := s.Clock.Now()
	source.Balance -= amount
	source.UpdatedAt = now
	dest.AccountID = to
	dest.Balance += amount
	dest.UpdatedAt = now

	if err := s.Accounts.SaveAccounts(ctx, source, dest); err != nil {
		return err
	}

	s.logger().InfoContext(ctx, "wallet transfer applied",
		slog.String("event", "wallet_transfer_applied"),
		slog.String("module", "wallet-ledger"),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int64("amount", amount),
	)
	return nil
}

// AdvanceStep increments and returns the monotonic step counter.
func (s *LedgerService) AdvanceStep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, err := s.Steps.CurrentStep(ctx)
	if err != nil {
		return 0, err
	}
	step++
	if err := s.Steps.SaveStep(ctx, step); err != nil {
		return 0, err
	}
	return step, nil
}

// CurrentStep reads the step counter without advancing it.
func (s *LedgerService) CurrentStep(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Steps.CurrentStep(ctx)
}
