// Package application 提供头寸台账服务：开仓/加仓、强制平仓与净头寸查询。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

// LedgerService 头寸台账应用服务
type LedgerService struct {
	repo      domain.PositionRepository
	contracts domain.ContractGateway
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewLedgerService 构造函数
func NewLedgerService(repo domain.PositionRepository, contracts domain.ContractGateway, logger *slog.Logger, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		repo:      repo,
		contracts: contracts,
		logger:    logger,
		metrics:   m,
	}
}

// OpenOrIncrease 对 Listed 合约开仓或按带符号数量加仓，返回头寸标识。
// 合约不处于 Listed 状态时返回 ErrContractNotTradable，台账不发生任何变化。
func (s *LedgerService) OpenOrIncrease(ctx context.Context, contractID string, quantity decimal.Decimal) (string, error) {
	if quantity.IsZero() {
		return "", fmt.Errorf("%w: contract %s", domain.ErrInvalidQuantity, contractID)
	}

	tradable, err := s.contracts.IsTradable(ctx, contractID)
	if err != nil {
		return "", err
	}
	if !tradable {
		return "", fmt.Errorf("%w: %s", domain.ErrContractNotTradable, contractID)
	}

	position, err := s.repo.GetByContract(ctx, contractID)
	if err != nil {
		return "", err
	}

	if position == nil || !position.Open() {
		position = domain.NewPosition(
			fmt.Sprintf("POS-%s-%d", contractID, time.Now().UnixNano()),
			contractID,
			quantity,
			time.Now().UTC(),
		)
		s.metrics.OpenPositions.Inc()
	} else {
		position.Increase(quantity)
	}

	if err := s.repo.Save(ctx, position); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "position updated",
		"position_id", position.PositionID,
		"contract_id", contractID,
		"quantity", position.Quantity.String(),
	)
	return position.PositionID, nil
}

// ForceClose 强制平掉合约上的头寸，返回平仓前的剩余数量。
// 仅由生命周期引擎在合约退市时调用；对不存在或已关闭的头寸是空操作，返回零。
func (s *LedgerService) ForceClose(ctx context.Context, contractID string, at time.Time) (decimal.Decimal, error) {
	position, err := s.repo.GetByContract(ctx, contractID)
	if err != nil {
		return decimal.Zero, err
	}
	if position == nil || !position.Open() {
		return decimal.Zero, nil
	}

	residual := position.ForceClose(at)
	if err := s.repo.Save(ctx, position); err != nil {
		return decimal.Zero, err
	}

	s.metrics.PositionsForceClosed.Inc()
	s.metrics.OpenPositions.Dec()
	s.logger.InfoContext(ctx, "position force-closed",
		"position_id", position.PositionID,
		"contract_id", contractID,
		"residual_quantity", residual.String(),
	)
	return residual, nil
}

// NetQuantity 返回合约上的净头寸数量，无头寸时为零
func (s *LedgerService) NetQuantity(ctx context.Context, contractID string) (decimal.Decimal, error) {
	position, err := s.repo.GetByContract(ctx, contractID)
	if err != nil {
		return decimal.Zero, err
	}
	if position == nil {
		return decimal.Zero, nil
	}
	return position.Quantity, nil
}
