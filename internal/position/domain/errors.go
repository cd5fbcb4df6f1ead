package domain

import "errors"

var (
	// ErrContractNotTradable 合约不处于 Listed 状态，拒绝开仓或加仓
	ErrContractNotTradable = errors.New("contract not tradable")
	// ErrInvalidQuantity 数量为零非法
	ErrInvalidQuantity = errors.New("quantity must be non-zero")
)
