// Package domain 提供头寸实体与头寸台账的领域规则。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus 头寸状态
type PositionStatus string

const (
	StatusOpen   PositionStatus = "OPEN"
	StatusClosed PositionStatus = "CLOSED"
)

// Position 某一合约上的有向头寸。每个合约至多一条台账记录，
// 数量带符号：正为多头，负为空头。
type Position struct {
	PositionID string
	ContractID string
	Quantity   decimal.Decimal
	Status     PositionStatus
	OpenedAt   time.Time
	ClosedAt   *time.Time
}

// NewPosition 创建新头寸
func NewPosition(positionID, contractID string, quantity decimal.Decimal, openedAt time.Time) *Position {
	return &Position{
		PositionID: positionID,
		ContractID: contractID,
		Quantity:   quantity,
		Status:     StatusOpen,
		OpenedAt:   openedAt,
	}
}

// Increase 按带符号数量调整头寸
func (p *Position) Increase(quantity decimal.Decimal) {
	p.Quantity = p.Quantity.Add(quantity)
}

// Open 头寸是否未关闭
func (p *Position) Open() bool {
	return p.Status == StatusOpen
}

// ForceClose 强制平仓：数量清零并标记关闭，返回平仓前的剩余数量。
// 不可逆；对已关闭头寸重复调用是空操作，返回零。
func (p *Position) ForceClose(at time.Time) decimal.Decimal {
	if p.Status == StatusClosed {
		return decimal.Zero
	}
	residual := p.Quantity
	p.Quantity = decimal.Zero
	p.Status = StatusClosed
	p.ClosedAt = &at
	return residual
}
