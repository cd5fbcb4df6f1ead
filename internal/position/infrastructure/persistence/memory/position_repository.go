// Package memory 提供头寸仓储的内存实现，用于确定性模拟运行与测试。
package memory

import (
	"context"
	"sync"

	"github.com/wyfcoding/optionlifecycle/internal/position/domain"
)

// PositionRepository 头寸仓储的内存实现，按合约标识建立索引
type PositionRepository struct {
	mu        sync.RWMutex
	positions map[string]domain.Position
}

// NewPositionRepository 创建内存头寸仓储
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{
		positions: make(map[string]domain.Position),
	}
}

// Save 实现 domain.PositionRepository.Save
func (r *PositionRepository) Save(_ context.Context, position *domain.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.positions[position.ContractID] = clone(position)
	return nil
}

// GetByContract 实现 domain.PositionRepository.GetByContract
func (r *PositionRepository) GetByContract(_ context.Context, contractID string) (*domain.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.positions[contractID]
	if !ok {
		return nil, nil
	}
	out := clone(&p)
	return &out, nil
}

// ListOpen 实现 domain.PositionRepository.ListOpen
func (r *PositionRepository) ListOpen(_ context.Context) ([]*domain.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Position, 0, len(r.positions))
	for _, p := range r.positions {
		if !p.Open() {
			continue
		}
		cp := clone(&p)
		out = append(out, &cp)
	}
	return out, nil
}

func clone(p *domain.Position) domain.Position {
	cp := *p
	if p.ClosedAt != nil {
		at := *p.ClosedAt
		cp.ClosedAt = &at
	}
	return cp
}
