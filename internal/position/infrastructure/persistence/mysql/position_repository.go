// Package mysql 提供头寸仓储接口的 MySQL GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/pkg/logger"
)

// PositionModel 头寸数据库模型
type PositionModel struct {
	gorm.Model
	PositionID string     `gorm:"column:position_id;type:varchar(64);uniqueIndex;not null"`
	ContractID string     `gorm:"column:contract_id;type:varchar(64);uniqueIndex;not null"`
	Quantity   string     `gorm:"column:quantity;type:decimal(32,18);not null"`
	Status     string     `gorm:"column:status;type:varchar(20);index;not null"`
	OpenedAt   time.Time  `gorm:"column:opened_at;type:datetime;not null"`
	ClosedAt   *time.Time `gorm:"column:closed_at;type:datetime"`
}

// TableName 指定表名
func (PositionModel) TableName() string {
	return "positions"
}

// positionRepositoryImpl 是 domain.PositionRepository 接口的 GORM 实现。
type positionRepositoryImpl struct {
	db *gorm.DB
}

// NewPositionRepository 创建头寸仓储实例
func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepositoryImpl{
		db: db,
	}
}

// Save 实现 domain.PositionRepository.Save
func (r *positionRepositoryImpl) Save(ctx context.Context, position *domain.Position) error {
	model := fromDomain(position)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}},
		UpdateAll: true,
	}).Create(model).Error

	if err != nil {
		logger.Error(ctx, "position_repository.Save failed", "position_id", position.PositionID, "error", err)
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// GetByContract 实现 domain.PositionRepository.GetByContract
func (r *positionRepositoryImpl) GetByContract(ctx context.Context, contractID string) (*domain.Position, error) {
	var model PositionModel
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "position_repository.GetByContract failed", "contract_id", contractID, "error", err)
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return toDomain(&model)
}

// ListOpen 实现 domain.PositionRepository.ListOpen
func (r *positionRepositoryImpl) ListOpen(ctx context.Context) ([]*domain.Position, error) {
	var models []PositionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusOpen)).
		Order("contract_id asc").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list open positions: %w", err)
	}

	out := make([]*domain.Position, 0, len(models))
	for i := range models {
		p, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toDomain(m *PositionModel) (*domain.Position, error) {
	qty, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q for %s: %w", m.Quantity, m.PositionID, err)
	}

	return &domain.Position{
		PositionID: m.PositionID,
		ContractID: m.ContractID,
		Quantity:   qty,
		Status:     domain.PositionStatus(m.Status),
		OpenedAt:   m.OpenedAt,
		ClosedAt:   m.ClosedAt,
	}, nil
}

func fromDomain(p *domain.Position) *PositionModel {
	return &PositionModel{
		PositionID: p.PositionID,
		ContractID: p.ContractID,
		Quantity:   p.Quantity.String(),
		Status:     string(p.Status),
		OpenedAt:   p.OpenedAt,
		ClosedAt:   p.ClosedAt,
	}
}
