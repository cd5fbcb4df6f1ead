// Package memory 提供合约仓储的内存实现，用于确定性模拟运行与测试。
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wyfcoding/optionlifecycle/internal/contract/domain"
)

// ContractRepository 合约仓储的内存实现，按 Symbol 建立索引
type ContractRepository struct {
	mu        sync.RWMutex
	contracts map[string]domain.Contract
}

// NewContractRepository 创建内存合约仓储
func NewContractRepository() *ContractRepository {
	return &ContractRepository{
		contracts: make(map[string]domain.Contract),
	}
}

// Create 实现 domain.ContractRepository.Create
func (r *ContractRepository) Create(_ context.Context, contract *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[contract.Symbol]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateContract, contract.Symbol)
	}
	r.contracts[contract.Symbol] = clone(contract)
	return nil
}

// Save 实现 domain.ContractRepository.Save
func (r *ContractRepository) Save(_ context.Context, contract *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[contract.Symbol]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownContract, contract.Symbol)
	}
	r.contracts[contract.Symbol] = clone(contract)
	return nil
}

// Get 实现 domain.ContractRepository.Get，不存在时返回 (nil, nil)
func (r *ContractRepository) Get(_ context.Context, symbol string) (*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[symbol]
	if !ok {
		return nil, nil
	}
	out := clone(&c)
	return &out, nil
}

// ListActive 实现 domain.ContractRepository.ListActive
func (r *ContractRepository) ListActive(_ context.Context) ([]*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		if !c.Active() {
			continue
		}
		cp := clone(&c)
		out = append(out, &cp)
	}
	return out, nil
}

// List 实现 domain.ContractRepository.List
func (r *ContractRepository) List(_ context.Context) ([]*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		cp := clone(&c)
		out = append(out, &cp)
	}
	return out, nil
}

// clone 深拷贝合约，避免调用方与仓储共享可变状态
func clone(c *domain.Contract) domain.Contract {
	cp := *c
	if c.EffectiveExpiry != nil {
		eff := *c.EffectiveExpiry
		cp.EffectiveExpiry = &eff
	}
	return cp
}
