package processor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pool = "0x197d7010147df7b99e9025c724f13723b29313f8"

// buy: el pool vende, el buyer es la cuenta.
func buy(n int, account string, base, quote string) domain.TradeRecord {
	return domain.TradeRecord{
		BlockNumber: fmt.Sprintf("%d", 100+n),
		BlockTime:   fmt.Sprintf("t%d", n),
		TxHash:      fmt.Sprintf("0xtx%d", n),
		Sender:      account,
		Buyer:       account,
		Seller:      pool,
		BaseAmount:  base,
		QuoteAmount: quote,
		Pool:        pool,
	}
}

// sell: el pool compra.
func sell(n int, account string, base, quote string) domain.TradeRecord {
	r := buy(n, account, base, quote)
	r.Buyer = pool
	r.Seller = account
	return r
}

func newTestProcessor(threshold float64) *Processor {
	return New(Config{Pool: pool, BarThreshold: threshold, Criteria: domain.AllSeries()})
}

func TestProcess_FIFOScenario(t *testing.T) {
	p := newTestProcessor(1000)
	reg := domain.NewRegistry()

	res, err := p.Process(reg, []domain.TradeRecord{
		buy(1, "0xa", "10", "10"),  // 10 @ 1
		buy(2, "0xa", "5", "10"),   // 5 @ 2
		sell(3, "0xa", "12", "36"), // 12 @ 3
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Processed)

	txs := res.Analysis.Transactions
	require.Len(t, txs, 3)
	last := txs[2]
	assert.Equal(t, domain.SideSell, last.Side)
	assert.InDelta(t, 3.0, last.Price, 1e-9)
	assert.InDelta(t, 22.0, last.RealizedPnL, 1e-9)
	assert.Equal(t, 0.0, last.ExternalPnL)
	assert.Equal(t, uint64(2), last.AccountWon)
	assert.Equal(t, uint64(0), last.AccountLost)
	assert.Equal(t, 1, last.AccountOpenPositions)
	assert.Equal(t, uint64(3), last.AccountTradeCount)
	assert.InDelta(t, 3.0, last.OpenInterest, 1e-9)
	// 3 restantes compradas a 2, valoradas a 3
	assert.InDelta(t, 3.0, last.UnrealizedPnL, 1e-9)

	ledger, ok := reg.Lookup("0xa")
	require.True(t, ok)
	lots := ledger.Lots()
	require.Len(t, lots, 1)
	assert.InDelta(t, 3.0, lots[0].Remaining, 1e-9)
	assert.Equal(t, 2.0, lots[0].Price)
}

func TestProcess_ExternalInflow(t *testing.T) {
	p := newTestProcessor(1000)
	res, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{
		sell(1, "0xb", "5", "20"),
	})
	require.NoError(t, err)

	tx := res.Analysis.Transactions[0]
	assert.Equal(t, 0.0, tx.RealizedPnL)
	assert.InDelta(t, 20.0, tx.ExternalPnL, 1e-9)
	assert.Equal(t, uint64(0), tx.AccountWon)
	assert.Equal(t, uint64(0), tx.AccountLost)
}

func TestProcess_CrossAccountSnapshot(t *testing.T) {
	p := newTestProcessor(1000)
	res, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{
		buy(1, "0xa", "10", "10"), // a: 10 @ 1
		buy(2, "0xb", "4", "8"),   // b: 4 @ 2
		sell(3, "0xc", "1", "4"),  // c: vende sin inventario @ 4
	})
	require.NoError(t, err)

	last := res.Analysis.Transactions[2]
	assert.InDelta(t, 14.0, last.OpenInterest, 1e-9)
	// a: (4-1)×10 = 30, b: (4-2)×4 = 8
	assert.InDelta(t, 38.0, last.UnrealizedPnL, 1e-9)
	assert.Equal(t, 0, last.AccountOpenPositions)
	assert.InDelta(t, 4.0, last.ExternalPnL, 1e-9)
}

func TestProcess_BarScenario(t *testing.T) {
	p := newTestProcessor(10)
	res, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{
		buy(1, "0xa", "4", "4"),  // @1
		buy(2, "0xa", "4", "8"),  // @2
		sell(3, "0xa", "4", "6"), // @1.5
		buy(4, "0xb", "3", "3"),
	})
	require.NoError(t, err)

	bars := res.Analysis.DollarBars
	require.Len(t, bars, 1)
	assert.Equal(t, "t1", bars[0].Datetime)
	assert.Equal(t, 1.0, bars[0].Open)
	assert.Equal(t, 2.0, bars[0].High)
	assert.Equal(t, 1.0, bars[0].Low)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.InDelta(t, 3.0, res.PendingQty, 1e-9)

	vol := res.Analysis.VolumeBars
	require.Len(t, vol, 1)
	assert.InDelta(t, 12.0, vol[0].VolumeBuy, 1e-9)
	assert.InDelta(t, 6.0, vol[0].VolumeSell, 1e-9)

	// último trade de la ventana: sell de 4 @1.5, lote 4 @1 → 2
	pnl := res.Analysis.PnlBars
	require.Len(t, pnl, 1)
	assert.InDelta(t, 2.0, pnl[0].InternalRealizedPnL, 1e-9)
}

func TestProcess_ZeroBaseAmountFails(t *testing.T) {
	p := newTestProcessor(10)
	reg := domain.NewRegistry()
	_, err := p.Process(reg, []domain.TradeRecord{
		buy(1, "0xa", "1", "1"),
		buy(2, "0xa", "0", "5"),
	})

	var nerr *domain.NumericError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 1, nerr.Index)
	assert.True(t, errors.Is(err, domain.ErrZeroBaseAmount))

	// el trade inválido no tocó el ledger
	l, _ := reg.Lookup("0xa")
	assert.Len(t, l.Lots(), 1)
}

func TestProcess_NonFiniteAmountsNeverReachLedger(t *testing.T) {
	p := newTestProcessor(10)
	reg := domain.NewRegistry()
	_, err := p.Process(reg, []domain.TradeRecord{buy(1, "0xa", "1e400", "1e400")})

	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
	assert.Zero(t, reg.Len())
}

func TestProcess_OverflowingPriceFails(t *testing.T) {
	p := New(Config{Pool: pool, BarThreshold: 10, Criteria: domain.AllSeries(), SkipMalformed: true})
	reg := domain.NewRegistry()
	_, err := p.Process(reg, []domain.TradeRecord{
		buy(1, "0xa", "1", "1"),
		buy(2, "0xa", "1e-300", "1e300"),
	})

	var nerr *domain.NumericError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 1, nerr.Index)
	assert.ErrorIs(t, err, domain.ErrNonFinitePrice)

	l, _ := reg.Lookup("0xa")
	require.Len(t, l.Lots(), 1)
	assert.Equal(t, 1.0, l.Lots()[0].Price)
	assert.InDelta(t, 1.0, reg.OpenInterest(), 1e-9)
}

func TestProcess_MalformedFailsFast(t *testing.T) {
	p := newTestProcessor(10)
	_, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{
		buy(1, "0xa", "1", "1"),
		buy(2, "0xa", "1,0", "1"),
		buy(3, "0xa", "1", "1"),
	})

	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Index)
	assert.Equal(t, "base_amount", perr.Field)
}

func TestProcess_SkipMalformed(t *testing.T) {
	p := New(Config{Pool: pool, BarThreshold: 10, Criteria: domain.AllSeries(), SkipMalformed: true})
	res, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{
		buy(1, "0xa", "1", "1"),
		buy(2, "0xa", "bad", "1"),
		buy(3, "0xa", "1", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Analysis.Transactions, 2)
}

func TestProcess_SkipModeStillFailsOnNumeric(t *testing.T) {
	p := New(Config{Pool: pool, BarThreshold: 10, Criteria: domain.AllSeries(), SkipMalformed: true})
	_, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{buy(1, "0xa", "0", "1")})
	assert.ErrorIs(t, err, domain.ErrZeroBaseAmount)
}

func TestProcess_ForeignPool(t *testing.T) {
	p := newTestProcessor(10)
	r := buy(1, "0xa", "1", "1")
	r.Pool = "0xother"

	_, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{r})
	var lerr *domain.LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "pool", lerr.Kind)
}

func TestProcess_CriteriaSelectsSeries(t *testing.T) {
	p := New(Config{Pool: pool, BarThreshold: 1, Criteria: domain.Criteria{VolumeBars: true}})
	res, err := p.Process(domain.NewRegistry(), []domain.TradeRecord{buy(1, "0xa", "2", "2")})
	require.NoError(t, err)

	assert.Nil(t, res.Analysis.DollarBars)
	assert.Nil(t, res.Analysis.PnlBars)
	assert.Nil(t, res.Analysis.Transactions)
	assert.Len(t, res.Analysis.VolumeBars, 1)
}

func TestProcess_EmptyInput(t *testing.T) {
	res, err := newTestProcessor(10).Process(domain.NewRegistry(), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Analysis.DollarBars)
	assert.Empty(t, res.Analysis.DollarBars)
	assert.Equal(t, 0, res.Processed)
}

func TestNew_DefaultThreshold(t *testing.T) {
	p := New(Config{Pool: pool})
	assert.Equal(t, defaultBarThreshold, p.cfg.BarThreshold)
}
