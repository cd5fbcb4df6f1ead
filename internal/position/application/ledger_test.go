package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionlifecycle/internal/position/domain"
	"github.com/wyfcoding/optionlifecycle/internal/position/infrastructure/persistence/memory"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

// stubGateway 以固定映射回答合约是否可交易
type stubGateway struct {
	tradable map[string]bool
}

func (g *stubGateway) IsTradable(_ context.Context, contractID string) (bool, error) {
	return g.tradable[contractID], nil
}

func newLedger(tradable map[string]bool) *LedgerService {
	return NewLedgerService(
		memory.NewPositionRepository(),
		&stubGateway{tradable: tradable},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New("test"),
	)
}

func TestOpenThenIncrease(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ledger := newLedger(map[string]bool{"SPY-140419-190-C": true})

	id, err := ledger.OpenOrIncrease(ctx, "SPY-140419-190-C", decimal.NewFromInt(10))
	require.NoError(err)
	require.NotEmpty(id)

	// second call adjusts the same ledger entry
	id2, err := ledger.OpenOrIncrease(ctx, "SPY-140419-190-C", decimal.NewFromInt(-4))
	require.NoError(err)
	require.Equal(id, id2)

	net, err := ledger.NetQuantity(ctx, "SPY-140419-190-C")
	require.NoError(err)
	require.True(net.Equal(decimal.NewFromInt(6)))
}

func TestOpenRejectsZeroQuantity(t *testing.T) {
	require := require.New(t)
	ledger := newLedger(map[string]bool{"SPY-140419-190-C": true})

	_, err := ledger.OpenOrIncrease(context.Background(), "SPY-140419-190-C", decimal.Zero)
	require.ErrorIs(err, domain.ErrInvalidQuantity)
}

func TestOpenRejectsNonTradableContract(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ledger := newLedger(map[string]bool{"SPY-140419-190-C": false})

	_, err := ledger.OpenOrIncrease(ctx, "SPY-140419-190-C", decimal.NewFromInt(5))
	require.ErrorIs(err, domain.ErrContractNotTradable)

	net, err := ledger.NetQuantity(ctx, "SPY-140419-190-C")
	require.NoError(err)
	require.True(net.IsZero(), "rejected open must leave the ledger unchanged")
}

func TestForceCloseReturnsResidual(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ledger := newLedger(map[string]bool{"SPY-140419-190-C": true})

	_, err := ledger.OpenOrIncrease(ctx, "SPY-140419-190-C", decimal.NewFromInt(-7))
	require.NoError(err)

	at := time.Date(2014, time.April, 21, 0, 0, 0, 0, time.UTC)
	residual, err := ledger.ForceClose(ctx, "SPY-140419-190-C", at)
	require.NoError(err)
	require.True(residual.Equal(decimal.NewFromInt(-7)))

	net, err := ledger.NetQuantity(ctx, "SPY-140419-190-C")
	require.NoError(err)
	require.True(net.IsZero())
}

func TestForceCloseIsIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ledger := newLedger(map[string]bool{"SPY-140419-190-C": true})

	_, err := ledger.OpenOrIncrease(ctx, "SPY-140419-190-C", decimal.NewFromInt(3))
	require.NoError(err)

	at := time.Date(2014, time.April, 21, 0, 0, 0, 0, time.UTC)
	first, err := ledger.ForceClose(ctx, "SPY-140419-190-C", at)
	require.NoError(err)
	require.True(first.Equal(decimal.NewFromInt(3)))

	second, err := ledger.ForceClose(ctx, "SPY-140419-190-C", at)
	require.NoError(err)
	require.True(second.IsZero(), "second force-close is a no-op")
}

func TestForceCloseUnknownContractIsNoop(t *testing.T) {
	require := require.New(t)
	ledger := newLedger(nil)

	residual, err := ledger.ForceClose(context.Background(), "SPY-140419-190-C", time.Now().UTC())
	require.NoError(err)
	require.True(residual.IsZero())
}
