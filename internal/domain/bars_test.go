package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarAggregator_SealsOnThreshold(t *testing.T) {
	a := NewBarAggregator(10)

	assert.False(t, a.Update(BarInput{Datetime: "t1", Price: 1, BaseQty: 4, VolumeBuy: 4}))
	assert.False(t, a.Update(BarInput{Datetime: "t2", Price: 2, BaseQty: 4, VolumeSell: 8, InternalPnL: 3}))
	assert.True(t, a.Update(BarInput{Datetime: "t3", Price: 1.5, BaseQty: 4, VolumeBuy: 6}))

	require.Len(t, a.DollarBars(), 1)
	bar := a.DollarBars()[0]
	assert.Equal(t, "t1", bar.Datetime)
	assert.Equal(t, 1.0, bar.Open)
	assert.Equal(t, 2.0, bar.High)
	assert.Equal(t, 1.0, bar.Low)
	assert.Equal(t, 1.5, bar.Close)

	vol := a.VolumeBars()[0]
	assert.Equal(t, "t1", vol.Datetime)
	assert.InDelta(t, 10.0, vol.VolumeBuy, 1e-9)
	assert.InDelta(t, 8.0, vol.VolumeSell, 1e-9)

	// último valor de la ventana, no la suma
	pnl := a.PnlBars()[0]
	assert.Equal(t, 0.0, pnl.InternalRealizedPnL)
	assert.Equal(t, "t1", pnl.Datetime)

	assert.False(t, a.Pending())
	assert.Equal(t, 0.0, a.CumulativeQty())
}

func TestBarAggregator_PartialBarNotEmitted(t *testing.T) {
	a := NewBarAggregator(10)
	a.Update(BarInput{Datetime: "t1", Price: 1, BaseQty: 4})
	a.Update(BarInput{Datetime: "t2", Price: 2, BaseQty: 4})
	a.Update(BarInput{Datetime: "t3", Price: 1.5, BaseQty: 4})

	sealed := a.Update(BarInput{Datetime: "t4", Price: 3, BaseQty: 3})

	assert.False(t, sealed)
	assert.True(t, a.Pending())
	assert.InDelta(t, 3.0, a.CumulativeQty(), 1e-9)
	assert.Len(t, a.DollarBars(), 1)
	assert.Len(t, a.VolumeBars(), 1)
	assert.Len(t, a.PnlBars(), 1)
}

func TestBarAggregator_ExactThresholdSeals(t *testing.T) {
	a := NewBarAggregator(5)
	assert.True(t, a.Update(BarInput{Datetime: "t1", Price: 2, BaseQty: 5}))

	bar := a.DollarBars()[0]
	assert.Equal(t, 2.0, bar.Open)
	assert.Equal(t, 2.0, bar.High)
	assert.Equal(t, 2.0, bar.Low)
	assert.Equal(t, 2.0, bar.Close)
}

func TestBarAggregator_NewWindowReinitialises(t *testing.T) {
	a := NewBarAggregator(1)
	a.Update(BarInput{Datetime: "t1", Price: 5, BaseQty: 1, VolumeBuy: 5})
	a.Update(BarInput{Datetime: "t2", Price: 3, BaseQty: 1, VolumeSell: 3, ExternalPnL: 7})

	require.Len(t, a.DollarBars(), 2)
	second := a.DollarBars()[1]
	assert.Equal(t, "t2", second.Datetime)
	assert.Equal(t, 3.0, second.Open)
	assert.Equal(t, 3.0, second.High)

	vol := a.VolumeBars()[1]
	assert.Equal(t, 0.0, vol.VolumeBuy)
	assert.Equal(t, 3.0, vol.VolumeSell)
	assert.Equal(t, 7.0, a.PnlBars()[1].ExternalRealizedPnL)
}
