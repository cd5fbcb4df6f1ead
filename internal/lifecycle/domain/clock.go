// Package domain 提供模拟处理时钟与合约退市事件。
package domain

import (
	"errors"
	"time"
)

// ErrNonMonotonicClock 处理时钟只能单调推进
var ErrNonMonotonicClock = errors.New("clock must advance monotonically")

// SimulationClock 单调推进的模拟处理时钟。重复提交同一时刻是合法的空推进。
type SimulationClock struct {
	now time.Time
	set bool
}

// NewSimulationClock 创建未启动的时钟
func NewSimulationClock() *SimulationClock {
	return &SimulationClock{}
}

// Advance 将时钟推进到 t。t 早于当前时刻时返回 ErrNonMonotonicClock，时钟不变。
func (c *SimulationClock) Advance(t time.Time) error {
	if c.set && t.Before(c.now) {
		return ErrNonMonotonicClock
	}
	c.now = t
	c.set = true
	return nil
}

// Now 返回当前时刻；时钟尚未推进过时 ok 为 false
func (c *SimulationClock) Now() (t time.Time, ok bool) {
	return c.now, c.set
}
