// Package mysql 提供合约仓储接口的 MySQL GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/logger"
)

// ContractModel 合约数据库模型
type ContractModel struct {
	gorm.Model
	Symbol          string     `gorm:"column:symbol;type:varchar(64);uniqueIndex;not null"`
	Underlying      string     `gorm:"column:underlying;type:varchar(20);index;not null"`
	Kind            string     `gorm:"column:kind;type:varchar(10);not null"`
	Strike          string     `gorm:"column:strike;type:decimal(20,8);not null"`
	Expiry          time.Time  `gorm:"column:expiry;type:date;index;not null"`
	OpenInterest    int64      `gorm:"column:open_interest;not null;default:0"`
	Status          int8       `gorm:"column:status;type:tinyint;index;not null;default:1"`
	EffectiveExpiry *time.Time `gorm:"column:effective_expiry;type:date"`
	ListedAt        time.Time  `gorm:"column:listed_at;type:datetime;not null"`
}

// TableName 指定表名
func (ContractModel) TableName() string {
	return "contracts"
}

// contractRepositoryImpl 是 domain.ContractRepository 接口的 GORM 实现。
type contractRepositoryImpl struct {
	db *gorm.DB
}

// NewContractRepository 创建合约仓储实例
func NewContractRepository(db *gorm.DB) domain.ContractRepository {
	return &contractRepositoryImpl{
		db: db,
	}
}

// Create 实现 domain.ContractRepository.Create
func (r *contractRepositoryImpl) Create(ctx context.Context, contract *domain.Contract) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ContractModel{}).
		Where("symbol = ?", contract.Symbol).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check contract existence: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateContract, contract.Symbol)
	}

	model := fromDomain(contract)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		logger.Error(ctx, "contract_repository.Create failed", "symbol", contract.Symbol, "error", err)
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

// Save 实现 domain.ContractRepository.Save
func (r *contractRepositoryImpl) Save(ctx context.Context, contract *domain.Contract) error {
	updates := map[string]interface{}{
		"open_interest":    contract.OpenInterest,
		"status":           int8(contract.Status),
		"effective_expiry": contract.EffectiveExpiry,
	}

	res := r.db.WithContext(ctx).Model(&ContractModel{}).
		Where("symbol = ?", contract.Symbol).Updates(updates)
	if res.Error != nil {
		logger.Error(ctx, "contract_repository.Save failed", "symbol", contract.Symbol, "error", res.Error)
		return fmt.Errorf("failed to save contract: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownContract, contract.Symbol)
	}
	return nil
}

// Get 实现 domain.ContractRepository.Get
func (r *contractRepositoryImpl) Get(ctx context.Context, symbol string) (*domain.Contract, error) {
	var model ContractModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "contract_repository.Get failed", "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return toDomain(&model)
}

// ListActive 实现 domain.ContractRepository.ListActive
func (r *contractRepositoryImpl) ListActive(ctx context.Context) ([]*domain.Contract, error) {
	var models []ContractModel
	if err := r.db.WithContext(ctx).
		Where("status <> ?", int8(domain.StatusDelisted)).
		Order("expiry asc, symbol asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active contracts: %w", err)
	}
	return toDomainList(models)
}

// List 实现 domain.ContractRepository.List
func (r *contractRepositoryImpl) List(ctx context.Context) ([]*domain.Contract, error) {
	var models []ContractModel
	if err := r.db.WithContext(ctx).
		Order("expiry asc, symbol asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return toDomainList(models)
}

func toDomainList(models []ContractModel) ([]*domain.Contract, error) {
	out := make([]*domain.Contract, 0, len(models))
	for i := range models {
		c, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toDomain(m *ContractModel) (*domain.Contract, error) {
	strike, err := decimal.NewFromString(m.Strike)
	if err != nil {
		return nil, fmt.Errorf("invalid strike %q for %s: %w", m.Strike, m.Symbol, err)
	}

	return &domain.Contract{
		Symbol:          m.Symbol,
		Underlying:      m.Underlying,
		Kind:            domain.ContractKind(m.Kind),
		Strike:          strike,
		Expiry:          m.Expiry.UTC(),
		OpenInterest:    m.OpenInterest,
		Status:          domain.ContractStatus(m.Status),
		EffectiveExpiry: m.EffectiveExpiry,
		ListedAt:        m.ListedAt,
	}, nil
}

func fromDomain(c *domain.Contract) *ContractModel {
	return &ContractModel{
		Symbol:          c.Symbol,
		Underlying:      c.Underlying,
		Kind:            string(c.Kind),
		Strike:          c.Strike.String(),
		Expiry:          c.Expiry,
		OpenInterest:    c.OpenInterest,
		Status:          int8(c.Status),
		EffectiveExpiry: c.EffectiveExpiry,
		ListedAt:        c.ListedAt,
	}
}
