package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func chainContract(t *testing.T, underlying string, strike int64, expiry time.Time, openInterest int64) *Contract {
	t.Helper()
	c, err := NewContract(underlying, KindCall, decimal.NewFromInt(strike), expiry, expiry.AddDate(0, -3, 0))
	require.NoError(t, err)
	require.NoError(t, c.SetOpenInterest(openInterest))
	return c
}

func TestFilterChainWindowAndOpenInterest(t *testing.T) {
	require := require.New(t)

	obs := date(2014, time.April, 1)
	in10 := chainContract(t, "SPY", 190, obs.AddDate(0, 0, 10), 100)
	in40 := chainContract(t, "SPY", 195, obs.AddDate(0, 0, 40), 100)
	in20 := chainContract(t, "SPY", 185, obs.AddDate(0, 0, 20), 100)

	// deliberately unsorted universe
	universe := []*Contract{in40, in20, in10}

	chain := FilterChain(universe, obs, And(
		ExpiringWithin(obs, 30*24*time.Hour),
		MinOpenInterest(1),
	))

	require.Len(chain, 2)
	require.Equal(in10.Symbol, chain[0].Symbol)
	require.Equal(in20.Symbol, chain[1].Symbol)
}

func TestFilterChainExcludesZeroOpenInterest(t *testing.T) {
	require := require.New(t)

	obs := date(2014, time.April, 1)
	liquid := chainContract(t, "SPY", 190, obs.AddDate(0, 0, 10), 50)
	empty := chainContract(t, "SPY", 195, obs.AddDate(0, 0, 10), 0)

	chain := FilterChain([]*Contract{empty, liquid}, obs, MinOpenInterest(1))

	require.Len(chain, 1)
	require.Equal(liquid.Symbol, chain[0].Symbol)
}

func TestFilterChainExcludesDelisted(t *testing.T) {
	require := require.New(t)

	obs := date(2014, time.April, 21)
	gone := chainContract(t, "SPY", 190, date(2014, time.April, 19), 10)
	require.NoError(gone.BeginExpiration(date(2014, time.April, 21)))
	require.NoError(gone.Delist())

	pending := chainContract(t, "SPY", 195, date(2014, time.April, 19), 10)
	require.NoError(pending.BeginExpiration(date(2014, time.April, 21)))

	chain := FilterChain([]*Contract{gone, pending}, obs, nil)

	require.Len(chain, 1, "delisted contracts are excluded, pending ones are not")
	require.Equal(pending.Symbol, chain[0].Symbol)
}

func TestFilterChainTieBreaksBySymbol(t *testing.T) {
	require := require.New(t)

	obs := date(2014, time.April, 1)
	expiry := obs.AddDate(0, 0, 10)
	a := chainContract(t, "SPY", 185, expiry, 10)
	b := chainContract(t, "SPY", 190, expiry, 10)

	chain := FilterChain([]*Contract{b, a}, obs, nil)

	require.Len(chain, 2)
	require.Equal(a.Symbol, chain[0].Symbol)
	require.Equal(b.Symbol, chain[1].Symbol)
}

func TestForUnderlying(t *testing.T) {
	require := require.New(t)

	obs := date(2014, time.April, 1)
	spy := chainContract(t, "SPY", 190, obs.AddDate(0, 0, 10), 10)
	qqq := chainContract(t, "QQQ", 90, obs.AddDate(0, 0, 5), 10)

	chain := FilterChain([]*Contract{spy, qqq}, obs, ForUnderlying("SPY"))

	require.Len(chain, 1)
	require.Equal(spy.Symbol, chain[0].Symbol)
}
