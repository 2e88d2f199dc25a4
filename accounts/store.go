package accounts

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sawtooth-seth/rpc/types"
)

// Store holds the accounts unlocked at startup. It is read only once built
// and safe for concurrent use without locking.
type Store struct {
	accounts  []*Account
	byAlias   map[string]*Account
	byAddress map[common.Address]*Account
}

func NewStore(accounts ...*Account) (*Store, error) {
	s := &Store{
		byAlias:   make(map[string]*Account, len(accounts)),
		byAddress: make(map[common.Address]*Account, len(accounts)),
	}
	for _, account := range accounts {
		if _, ok := s.byAlias[account.Alias()]; ok {
			return nil, fmt.Errorf("duplicate account alias %q", account.Alias())
		}
		s.byAlias[account.Alias()] = account
		s.byAddress[account.Address()] = account
		s.accounts = append(s.accounts, account)
	}
	return s, nil
}

// ByAlias fails with types.ErrAccountNotFound for aliases not unlocked.
func (s *Store) ByAlias(alias string) (*Account, error) {
	if account, ok := s.byAlias[alias]; ok {
		return account, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrAccountNotFound, alias)
}

// ByAddress fails with types.ErrAccountLocked for addresses not unlocked.
func (s *Store) ByAddress(address common.Address) (*Account, error) {
	if account, ok := s.byAddress[address]; ok {
		return account, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrAccountLocked, address.Hex())
}

// List returns the accounts in the order they were unlocked.
func (s *Store) List() []*Account {
	return append([]*Account(nil), s.accounts...)
}

func (s *Store) Addresses() []common.Address {
	addresses := make([]common.Address, len(s.accounts))
	for i, account := range s.accounts {
		addresses[i] = account.Address()
	}
	return addresses
}

func (s *Store) Len() int { return len(s.accounts) }
