package account

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account // keyed by handle
}

// NewMemoryRepository builds an in-memory account store for development and
// tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acct Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acct.Handle]; exists {
		return errors.New("handle already taken")
	}
	r.accounts[acct.Handle] = acct
	return nil
}

func (r *memoryRepository) FindByHandle(_ context.Context, handle string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[handle]
	if !ok {
		return Account{}, errors.New("account not found")
	}
	return acct, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.accounts {
		if acct.ID == id {
			return acct, nil
		}
	}
	return Account{}, errors.New("account not found")
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for handle, acct := range r.accounts {
		if acct.ID == id {
			acct.TokenVersion = version
			r.accounts[handle] = acct
			return nil
		}
	}
	return errors.New("account not found")
}
