// Package domain 提供期权合约实体、生命周期状态机与期权链过滤。
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContractKind 合约类型
type ContractKind string

// ContractStatus 合约生命周期状态
type ContractStatus int8

const (
	KindCall ContractKind = "CALL"
	KindPut  ContractKind = "PUT"

	// StatusListed 可交易，名义到期日在处理时钟之后
	StatusListed ContractStatus = 1
	// StatusPendingExpiration 名义到期日已到，但有效处理日尚未到达
	StatusPendingExpiration ContractStatus = 2
	// StatusDelisted 终态，不再允许交易或头寸变动
	StatusDelisted ContractStatus = 3
)

func (s ContractStatus) String() string {
	switch s {
	case StatusListed:
		return "LISTED"
	case StatusPendingExpiration:
		return "PENDING_EXPIRATION"
	case StatusDelisted:
		return "DELISTED"
	}
	return "UNKNOWN"
}

// Contract 期权合约。身份由 (标的, 类型, 行权价, 名义到期日) 决定，
// 注册后仅未平仓量与生命周期状态可变。
type Contract struct {
	// Symbol 规范化合约标识，例如 SPY-140419-190-C
	Symbol     string
	Underlying string
	Kind       ContractKind
	Strike     decimal.Decimal
	// Expiry 名义到期日（UTC 日期）
	Expiry       time.Time
	OpenInterest int64
	Status       ContractStatus
	// EffectiveExpiry 节假日顺延后的有效处理日，进入 PendingExpiration 时计算并缓存
	EffectiveExpiry *time.Time
	ListedAt        time.Time
}

// Symbol 生成规范化合约标识，例如 SPY-140419-190-C
func Symbol(underlying string, kind ContractKind, strike decimal.Decimal, expiry time.Time) string {
	suffix := "C"
	if kind == KindPut {
		suffix = "P"
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		strings.ToUpper(underlying),
		expiry.UTC().Format("060102"),
		strike.String(),
		suffix,
	)
}

// NewContract 创建处于 Listed 状态的新合约
func NewContract(underlying string, kind ContractKind, strike decimal.Decimal, expiry time.Time, listedAt time.Time) (*Contract, error) {
	if underlying == "" {
		return nil, fmt.Errorf("%w: underlying is required", ErrInvalidAttribute)
	}
	if kind != KindCall && kind != KindPut {
		return nil, fmt.Errorf("%w: unknown contract kind %q", ErrInvalidAttribute, kind)
	}
	if strike.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: strike must be positive", ErrInvalidAttribute)
	}
	if expiry.IsZero() {
		return nil, fmt.Errorf("%w: expiry is required", ErrInvalidAttribute)
	}

	expiry = truncateToDay(expiry)
	return &Contract{
		Symbol:     Symbol(underlying, kind, strike, expiry),
		Underlying: strings.ToUpper(underlying),
		Kind:       kind,
		Strike:     strike,
		Expiry:     expiry,
		Status:     StatusListed,
		ListedAt:   listedAt,
	}, nil
}

// SetOpenInterest 更新未平仓量，负值非法
func (c *Contract) SetOpenInterest(v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: open interest must be >= 0, got %d", ErrInvalidAttribute, v)
	}
	c.OpenInterest = v
	return nil
}

// Tradable 合约当前是否可交易
func (c *Contract) Tradable() bool {
	return c.Status == StatusListed
}

// Active 合约是否尚未退市
func (c *Contract) Active() bool {
	return c.Status != StatusDelisted
}

// BeginExpiration 进入待退市状态并缓存有效处理日。
// 状态机单向推进，重复调用或逆向调用返回 ErrInvalidTransition。
func (c *Contract) BeginExpiration(effective time.Time) error {
	if c.Status != StatusListed {
		return fmt.Errorf("%w: cannot begin expiration from %s", ErrInvalidTransition, c.Status)
	}
	effective = truncateToDay(effective)
	if effective.Before(c.Expiry) {
		return fmt.Errorf("%w: effective date %s precedes nominal expiry %s",
			ErrInvalidTransition, effective.Format("2006-01-02"), c.Expiry.Format("2006-01-02"))
	}
	c.Status = StatusPendingExpiration
	c.EffectiveExpiry = &effective
	return nil
}

// Delist 退市，终态
func (c *Contract) Delist() error {
	if c.Status != StatusPendingExpiration {
		return fmt.Errorf("%w: cannot delist from %s", ErrInvalidTransition, c.Status)
	}
	c.Status = StatusDelisted
	return nil
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
