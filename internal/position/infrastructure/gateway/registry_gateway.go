// Package gateway 提供头寸台账对合约注册表的进程内适配。
package gateway

import (
	"context"

	contractapp "github.com/wyfcoding/optionlifecycle/internal/contract/application"
)

// RegistryGateway 通过合约注册表服务实现 domain.ContractGateway
type RegistryGateway struct {
	registry *contractapp.RegistryService
}

// NewRegistryGateway 构造函数
func NewRegistryGateway(registry *contractapp.RegistryService) *RegistryGateway {
	return &RegistryGateway{registry: registry}
}

// IsTradable 返回合约是否处于 Listed 状态；合约不存在时返回 ErrUnknownContract
func (g *RegistryGateway) IsTradable(ctx context.Context, contractID string) (bool, error) {
	contract, err := g.registry.Get(ctx, contractID)
	if err != nil {
		return false, err
	}
	return contract.Tradable(), nil
}
