package domain

import "context"

// PositionRepository 头寸仓储接口，每个合约至多一条记录
type PositionRepository interface {
	// Save 持久化头寸（新建或更新）
	Save(ctx context.Context, position *Position) error
	// GetByContract 按合约标识查询头寸，不存在时返回 (nil, nil)
	GetByContract(ctx context.Context, contractID string) (*Position, error)
	// ListOpen 返回所有未关闭头寸
	ListOpen(ctx context.Context) ([]*Position, error)
}

// ContractGateway 合约状态查询端口，由合约注册表实现。
// 合约不存在时返回 contract 域的 ErrUnknownContract。
type ContractGateway interface {
	IsTradable(ctx context.Context, contractID string) (bool, error)
}
