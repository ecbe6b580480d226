package auth

import "sync"

// MockStore is an in-memory CredentialStore for testing
type MockStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	failing  bool
}

// NewMockStore creates a new in-memory credential store
func NewMockStore() *MockStore {
	return &MockStore{accounts: make(map[string]*Account)}
}

// SetFailing makes every operation fail with ErrStoreUnavailable
func (m *MockStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *MockStore) Store(account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrStoreUnavailable
	}
	if account == nil || account.Label == "" {
		return ErrInvalidCredentials
	}
	copy := *account
	m.accounts[account.Label] = &copy
	return nil
}

func (m *MockStore) Retrieve(label string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return nil, ErrStoreUnavailable
	}
	account, exists := m.accounts[label]
	if !exists {
		return nil, ErrCredentialsNotFound
	}
	copy := *account
	return &copy, nil
}

func (m *MockStore) List() ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return nil, ErrStoreUnavailable
	}
	var accounts []*Account
	for _, account := range m.accounts {
		copy := *account
		accounts = append(accounts, &copy)
	}
	return accounts, nil
}

func (m *MockStore) Delete(label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrStoreUnavailable
	}
	if _, exists := m.accounts[label]; !exists {
		return ErrCredentialsNotFound
	}
	delete(m.accounts, label)
	return nil
}

func (m *MockStore) Exists(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.accounts[label]
	return exists && !m.failing
}
