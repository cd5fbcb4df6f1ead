// Package application 提供生命周期引擎：由模拟时钟驱动合约从挂牌经待退市到退市，
// 退市时同步强平头寸并对外发布事件。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	calendardomain "github.com/wyfcoding/optionlifecycle/internal/calendar/domain"
	contractdomain "github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	"github.com/wyfcoding/optionlifecycle/internal/lifecycle/domain"
	positionapp "github.com/wyfcoding/optionlifecycle/internal/position/application"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

// LifecycleEngine 合约生命周期引擎。所有状态迁移在 Advance 内同步完成：
// 一次推进内，合约退市与其头寸强平是同一个原子步骤，调用方观察不到
// "已退市但头寸未平" 的中间状态。
type LifecycleEngine struct {
	mu        sync.Mutex
	clock     *domain.SimulationClock
	contracts contractdomain.ContractRepository
	calendar  *calendardomain.TradingCalendar
	ledger    *positionapp.LedgerService
	publisher domain.DelistingPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewLifecycleEngine 构造函数。publisher 可为 nil，此时退市事件只记日志。
func NewLifecycleEngine(
	contracts contractdomain.ContractRepository,
	calendar *calendardomain.TradingCalendar,
	ledger *positionapp.LedgerService,
	publisher domain.DelistingPublisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *LifecycleEngine {
	return &LifecycleEngine{
		clock:     domain.NewSimulationClock(),
		contracts: contracts,
		calendar:  calendar,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// Now 返回当前处理时钟；时钟尚未推进过时 ok 为 false
func (e *LifecycleEngine) Now() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Now()
}

// Advance 将处理时钟推进到 t 并评估所有未退市合约的到期状态。
// t 早于上一次推进时返回 ErrNonMonotonicClock 且不改变任何状态；
// 同一 t 的重复推进是幂等的，不会产生重复迁移或重复事件。
func (e *LifecycleEngine) Advance(ctx context.Context, t time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer e.metrics.ObserveAdvance(start)

	if err := e.clock.Advance(t); err != nil {
		return fmt.Errorf("%w: advance to %s", err, t.Format(time.RFC3339))
	}

	active, err := e.contracts.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active contracts: %w", err)
	}

	for _, contract := range active {
		if err := e.evaluate(ctx, t, contract); err != nil {
			return fmt.Errorf("contract %s: %w", contract.Symbol, err)
		}
	}
	return nil
}

// evaluate 推进单个合约的生命周期。Listed 合约的名义到期日已到时先进入
// PendingExpiration 并缓存有效处理日；当 t 也已达到有效处理日时，同一次
// 推进内继续完成退市。
func (e *LifecycleEngine) evaluate(ctx context.Context, t time.Time, contract *contractdomain.Contract) error {
	if contract.Status == contractdomain.StatusListed && !t.Before(contract.Expiry) {
		effective := e.calendar.EffectiveDate(contract.Expiry)
		if err := contract.BeginExpiration(effective); err != nil {
			return err
		}
		if err := e.contracts.Save(ctx, contract); err != nil {
			return err
		}
		e.logger.InfoContext(ctx, "contract pending expiration",
			"symbol", contract.Symbol,
			"nominal_expiry", contract.Expiry.Format("2006-01-02"),
			"effective_expiry", effective.Format("2006-01-02"),
		)
	}

	if contract.Status == contractdomain.StatusPendingExpiration && !t.Before(*contract.EffectiveExpiry) {
		return e.delist(ctx, t, contract)
	}
	return nil
}

// delist 完成退市：状态迁移、同步强平头寸、发布事件
func (e *LifecycleEngine) delist(ctx context.Context, t time.Time, contract *contractdomain.Contract) error {
	if err := contract.Delist(); err != nil {
		return err
	}
	if err := e.contracts.Save(ctx, contract); err != nil {
		return err
	}

	residual, err := e.ledger.ForceClose(ctx, contract.Symbol, t)
	if err != nil {
		return fmt.Errorf("force close failed: %w", err)
	}

	e.metrics.ContractsDelisted.Inc()
	e.logger.InfoContext(ctx, "contract delisted",
		"symbol", contract.Symbol,
		"effective_expiry", contract.EffectiveExpiry.Format("2006-01-02"),
		"residual_quantity", residual.String(),
	)

	if e.publisher == nil {
		return nil
	}

	event := domain.ContractDelistedEvent{
		ContractID:       contract.Symbol,
		Underlying:       contract.Underlying,
		NominalExpiry:    contract.Expiry,
		EffectiveExpiry:  *contract.EffectiveExpiry,
		ResidualQuantity: residual.String(),
		OccurredOn:       t,
	}
	// 事件仅面向外部协作方，发布失败不回滚本次推进
	if err := e.publisher.PublishContractDelisted(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish delisting event",
			"symbol", contract.Symbol,
			"error", err,
		)
	}
	return nil
}
