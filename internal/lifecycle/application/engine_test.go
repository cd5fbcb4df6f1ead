package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	calendardomain "github.com/wyfcoding/optionlifecycle/internal/calendar/domain"
	contractapp "github.com/wyfcoding/optionlifecycle/internal/contract/application"
	contractdomain "github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	contractmemory "github.com/wyfcoding/optionlifecycle/internal/contract/infrastructure/persistence/memory"
	"github.com/wyfcoding/optionlifecycle/internal/lifecycle/domain"
	positionapp "github.com/wyfcoding/optionlifecycle/internal/position/application"
	positiondomain "github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/gateway"
	positionmemory "github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/persistence/memory"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

// capturePublisher 收集发布的退市事件，供断言使用
type capturePublisher struct {
	events []domain.ContractDelistedEvent
}

func (p *capturePublisher) PublishContractDelisted(_ context.Context, event domain.ContractDelistedEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	registry  *contractapp.RegistryService
	ledger    *positionapp.LedgerService
	engine    *LifecycleEngine
	publisher *capturePublisher
}

func newFixture(holidays []time.Time) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New("test")
	publisher := &capturePublisher{}

	contracts := contractmemory.NewContractRepository()
	registry := contractapp.NewRegistryService(contracts, logger, m)
	ledger := positionapp.NewLedgerService(
		positionmemory.NewPositionRepository(),
		gateway.NewRegistryGateway(registry),
		logger,
		m,
	)
	calendar := calendardomain.NewTradingCalendar("usa", holidays)

	return &fixture{
		registry:  registry,
		ledger:    ledger,
		engine:    NewLifecycleEngine(contracts, calendar, ledger, publisher, logger, m),
		publisher: publisher,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestWeekendExpiryRoundtrip 覆盖周六名义到期的完整路径：周五仍可交易，
// 周六进入待退市并停止交易，周一达到有效处理日后退市并强平头寸。
func TestWeekendExpiryRoundtrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(nil)

	// 名义到期日 2014-04-19 为周六
	symbol, err := f.registry.Register(ctx, "SPY", contractdomain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)

	_, err = f.ledger.OpenOrIncrease(ctx, symbol, decimal.NewFromInt(10))
	require.NoError(err)

	// 周五：到期日未到，一切如常
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 18)))
	contract, err := f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusListed, contract.Status)

	// 周六：进入待退市，有效处理日滚动到周一；头寸保持不动
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 19)))
	contract, err = f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusPendingExpiration, contract.Status)
	require.NotNil(contract.EffectiveExpiry)
	require.Equal(date(2014, time.April, 21), *contract.EffectiveExpiry)

	// 待退市合约不可再开仓
	_, err = f.ledger.OpenOrIncrease(ctx, symbol, decimal.NewFromInt(1))
	require.ErrorIs(err, positiondomain.ErrContractNotTradable)

	// 周日：仍在等待有效处理日
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 20)))
	net, err := f.ledger.NetQuantity(ctx, symbol)
	require.NoError(err)
	require.True(net.Equal(decimal.NewFromInt(10)), "position survives until the effective date")

	// 周一：退市 + 强平 + 事件
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 21)))
	contract, err = f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusDelisted, contract.Status)

	net, err = f.ledger.NetQuantity(ctx, symbol)
	require.NoError(err)
	require.True(net.IsZero())

	require.Len(f.publisher.events, 1)
	event := f.publisher.events[0]
	require.Equal(symbol, event.ContractID)
	require.Equal("SPY", event.Underlying)
	require.Equal(date(2014, time.April, 19), event.NominalExpiry)
	require.Equal(date(2014, time.April, 21), event.EffectiveExpiry)
	require.Equal("10", event.ResidualQuantity)
}

// TestTradingDayExpiryDelistsSameAdvance 名义到期日本身为交易日时，
// 同一次推进内完成待退市与退市两步。
func TestTradingDayExpiryDelistsSameAdvance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(nil)

	// 2014-04-17 为周四
	symbol, err := f.registry.Register(ctx, "SPY", contractdomain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 17))
	require.NoError(err)

	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 17)))

	contract, err := f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusDelisted, contract.Status)
	require.Len(f.publisher.events, 1)
}

func TestAdvanceRejectsBackwardClock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(nil)

	symbol, err := f.registry.Register(ctx, "SPY", contractdomain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)

	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 18)))

	err = f.engine.Advance(ctx, date(2014, time.April, 17))
	require.ErrorIs(err, domain.ErrNonMonotonicClock)

	// 拒绝的推进不触碰任何状态
	contract, err := f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusListed, contract.Status)

	now, ok := f.engine.Now()
	require.True(ok)
	require.Equal(date(2014, time.April, 18), now)
}

func TestAdvanceIsIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := newFixture(nil)

	symbol, err := f.registry.Register(ctx, "SPY", contractdomain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)
	_, err = f.ledger.OpenOrIncrease(ctx, symbol, decimal.NewFromInt(5))
	require.NoError(err)

	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 21)))
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 21)))
	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 22)))

	contract, err := f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusDelisted, contract.Status)
	require.Len(f.publisher.events, 1, "re-advancing must not re-emit events")
}

// TestHolidayShiftsEffectiveDate 节假日紧邻周末时有效处理日越过整段非交易日
func TestHolidayShiftsEffectiveDate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	// 2014-04-18（周五，Good Friday）为节假日
	f := newFixture([]time.Time{date(2014, time.April, 18)})

	symbol, err := f.registry.Register(ctx, "SPY", contractdomain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 18))
	require.NoError(err)

	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 18)))
	contract, err := f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusPendingExpiration, contract.Status)
	require.Equal(date(2014, time.April, 21), *contract.EffectiveExpiry)

	require.NoError(f.engine.Advance(ctx, date(2014, time.April, 21)))
	contract, err = f.registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(contractdomain.StatusDelisted, contract.Status)
}
