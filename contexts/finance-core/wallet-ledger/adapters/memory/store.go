package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"electra/contexts/finance-core/wallet-ledger/domain/entities"
	"electra/contexts/finance-core/wallet-ledger/ports"
)

// Store keeps balances and the step counter in process memory.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]entities.Account
	step     int64
}

func NewStore() *Store {
	return &Store{
		accounts: map[string]entities.Account{},
	}
}

var (
	_ ports.AccountStore = (*Store)(nil)
	_ ports.StepStore    = (*Store)(nil)
	_ ports.Clock        = (*Store)(nil)
)

func (s *Store) GetAccount(_ context.Context, accountID string) (entities.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, found := s.accounts[accountID]
	return account, found, nil
}

func (s *Store) SaveAccounts(_ context.Context, accounts ...entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.accounts[account.AccountID] = account
	}
	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]entities.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts, nil
}

func (s *Store) CurrentStep(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step, nil
}

func (s *Store) SaveStep(_ context.Context, step int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
