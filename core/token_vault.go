package core

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTokenVault keeps the token pair in process memory. It satisfies the
// pair-atomicity contract with a mutex around the whole-pair swap.
type MemoryTokenVault struct {
	mu   sync.Mutex
	pair TokenPair
	set  bool
}

func NewMemoryTokenVault() *MemoryTokenVault {
	return &MemoryTokenVault{}
}

func (v *MemoryTokenVault) Get(context.Context) (TokenPair, error) {
	if v == nil {
		return TokenPair{}, fmt.Errorf("core: token vault is not configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.set {
		return TokenPair{}, nil
	}
	return v.pair, nil
}

func (v *MemoryTokenVault) Put(_ context.Context, pair TokenPair) error {
	if v == nil {
		return fmt.Errorf("core: token vault is not configured")
	}
	if err := pair.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	v.pair = pair
	v.set = true
	v.mu.Unlock()
	return nil
}

func (v *MemoryTokenVault) Clear(context.Context) error {
	if v == nil {
		return fmt.Errorf("core: token vault is not configured")
	}
	v.mu.Lock()
	v.pair = TokenPair{}
	v.set = false
	v.mu.Unlock()
	return nil
}

var _ TokenVault = (*MemoryTokenVault)(nil)
