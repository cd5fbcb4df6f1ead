package domain

import "context"

// ContractRepository 合约仓储接口。合约只新增与更新，永不删除。
type ContractRepository interface {
	// Create 新增合约，Symbol 冲突时返回 ErrDuplicateContract
	Create(ctx context.Context, contract *Contract) error
	// Save 持久化合约的可变属性（未平仓量、生命周期状态、有效处理日）
	Save(ctx context.Context, contract *Contract) error
	// Get 按 Symbol 查询合约，不存在时返回 (nil, nil)
	Get(ctx context.Context, symbol string) (*Contract, error)
	// ListActive 返回所有未退市合约
	ListActive(ctx context.Context) ([]*Contract, error)
	// List 返回全部合约
	List(ctx context.Context) ([]*Contract, error)
}
