// Package application 提供合约注册表与期权链查询服务。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

// RegistryService 合约注册表应用服务
type RegistryService struct {
	repo    domain.ContractRepository
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRegistryService 构造函数
func NewRegistryService(repo domain.ContractRepository, logger *slog.Logger, m *metrics.Metrics) *RegistryService {
	return &RegistryService{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Register 注册新合约，返回规范化合约标识。
// 相同 (标的, 类型, 行权价, 到期日) 的合约已存在时返回 ErrDuplicateContract。
func (s *RegistryService) Register(ctx context.Context, underlying string, kind domain.ContractKind, strike decimal.Decimal, expiry time.Time) (string, error) {
	contract, err := domain.NewContract(underlying, kind, strike, expiry, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return "", err
	}

	s.metrics.ContractsRegistered.Inc()
	s.logger.InfoContext(ctx, "contract registered",
		"symbol", contract.Symbol,
		"underlying", contract.Underlying,
		"expiry", contract.Expiry.Format("2006-01-02"),
	)
	return contract.Symbol, nil
}

// Get 按标识查询合约
func (s *RegistryService) Get(ctx context.Context, symbol string) (*domain.Contract, error) {
	contract, err := s.repo.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContract, symbol)
	}
	return contract, nil
}

// UpdateOpenInterest 更新合约未平仓量
func (s *RegistryService) UpdateOpenInterest(ctx context.Context, symbol string, value int64) error {
	contract, err := s.Get(ctx, symbol)
	if err != nil {
		return err
	}
	if err := contract.SetOpenInterest(value); err != nil {
		return err
	}
	return s.repo.Save(ctx, contract)
}

// FilterChain 在观察时刻 at 过滤期权链，结果按到期日升序排列
func (s *RegistryService) FilterChain(ctx context.Context, at time.Time, pred domain.ChainPredicate) ([]*domain.Contract, error) {
	universe, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterChain(universe, at, pred), nil
}
