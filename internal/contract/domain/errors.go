package domain

import "errors"

var (
	// ErrDuplicateContract 相同 (标的, 类型, 行权价, 到期日) 的合约已注册
	ErrDuplicateContract = errors.New("contract already registered")
	// ErrUnknownContract 合约不存在
	ErrUnknownContract = errors.New("contract not found")
	// ErrInvalidAttribute 合约属性非法（如负的未平仓量）
	ErrInvalidAttribute = errors.New("invalid contract attribute")
	// ErrInvalidTransition 生命周期状态只能单向推进
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)
