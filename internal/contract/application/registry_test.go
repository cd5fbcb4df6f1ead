package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionlifecycle/internal/contract/domain"
	"github.com/wyfcoding/optionlifecycle/internal/contract/infrastructure/persistence/memory"
	"github.com/wyfcoding/optionlifecycle/pkg/metrics"
)

func newRegistry() *RegistryService {
	return NewRegistryService(
		memory.NewContractRepository(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New("test"),
	)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRegisterAndGet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	registry := newRegistry()

	symbol, err := registry.Register(ctx, "SPY", domain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)
	require.Equal("SPY-140419-190-C", symbol)

	contract, err := registry.Get(ctx, symbol)
	require.NoError(err)
	require.Equal(domain.StatusListed, contract.Status)
	require.Equal("SPY", contract.Underlying)
}

func TestRegisterDuplicate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	registry := newRegistry()

	_, err := registry.Register(ctx, "SPY", domain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)

	_, err = registry.Register(ctx, "SPY", domain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.ErrorIs(err, domain.ErrDuplicateContract)

	// same tuple apart from kind is a distinct contract
	_, err = registry.Register(ctx, "SPY", domain.KindPut, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)
}

func TestGetUnknown(t *testing.T) {
	require := require.New(t)

	_, err := newRegistry().Get(context.Background(), "SPY-140419-190-C")
	require.ErrorIs(err, domain.ErrUnknownContract)
}

func TestUpdateOpenInterest(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	registry := newRegistry()

	symbol, err := registry.Register(ctx, "SPY", domain.KindCall, decimal.NewFromInt(190), date(2014, time.April, 19))
	require.NoError(err)

	require.NoError(registry.UpdateOpenInterest(ctx, symbol, 250))

	contract, err := registry.Get(ctx, symbol)
	require.NoError(err)
	require.EqualValues(250, contract.OpenInterest)

	err = registry.UpdateOpenInterest(ctx, symbol, -5)
	require.ErrorIs(err, domain.ErrInvalidAttribute)

	contract, err = registry.Get(ctx, symbol)
	require.NoError(err)
	require.EqualValues(250, contract.OpenInterest, "failed update must leave state unchanged")

	err = registry.UpdateOpenInterest(ctx, "NOPE-140419-1-C", 10)
	require.ErrorIs(err, domain.ErrUnknownContract)
}

func TestFilterChainThroughRegistry(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	registry := newRegistry()

	obs := date(2014, time.April, 1)
	expiries := []time.Time{
		obs.AddDate(0, 0, 10),
		obs.AddDate(0, 0, 40),
		obs.AddDate(0, 0, 20),
	}
	for i, expiry := range expiries {
		symbol, err := registry.Register(ctx, "SPY", domain.KindCall, decimal.NewFromInt(int64(180+5*i)), expiry)
		require.NoError(err)
		require.NoError(registry.UpdateOpenInterest(ctx, symbol, 100))
	}

	chain, err := registry.FilterChain(ctx, obs, domain.And(
		domain.ExpiringWithin(obs, 30*24*time.Hour),
		domain.MinOpenInterest(1),
	))
	require.NoError(err)

	require.Len(chain, 2)
	require.Equal(expiries[0], chain[0].Expiry)
	require.Equal(expiries[2], chain[1].Expiry)
}
