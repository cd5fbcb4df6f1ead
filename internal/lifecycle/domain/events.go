package domain

import (
	"context"
	"time"
)

// ContractDelistedEventType 合约退市事件类型
const ContractDelistedEventType = "lifecycle.contract.delisted"

// ContractDelistedEvent 合约退市事件。台账的强制平仓在 advance 内同步完成，
// 事件仅面向对账/统计等外部协作方。
type ContractDelistedEvent struct {
	ContractID       string    `json:"contract_id"`
	Underlying       string    `json:"underlying"`
	NominalExpiry    time.Time `json:"nominal_expiry"`
	EffectiveExpiry  time.Time `json:"effective_expiry"`
	ResidualQuantity string    `json:"residual_quantity"`
	OccurredOn       time.Time `json:"occurred_on"`
}

// DelistingPublisher 退市事件发布者接口
type DelistingPublisher interface {
	PublishContractDelisted(ctx context.Context, event ContractDelistedEvent) error
}
