package domain

// DollarBar es una vela OHLC. Pese al nombre, la ventana se cierra por cantidad
// base acumulada, no por valor en quote.
type DollarBar struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
}

// VolumeBar acumula el volumen quote de compras y ventas de la ventana.
type VolumeBar struct {
	Datetime   string  `json:"datetime"`
	VolumeBuy  float64 `json:"volume_buy"`
	VolumeSell float64 `json:"volume_sell"`
}

// PnlBar guarda el último PnL realizado visto en la ventana (último valor, no suma).
type PnlBar struct {
	Datetime            string  `json:"datetime"`
	InternalRealizedPnL float64 `json:"internal_realized_pnl"`
	ExternalRealizedPnL float64 `json:"external_realized_pnl"`
}

// BarInput son las señales de un trade que alimentan al agregador.
type BarInput struct {
	Datetime    string
	Price       float64
	BaseQty     float64
	VolumeBuy   float64
	VolumeSell  float64
	InternalPnL float64
	ExternalPnL float64
}

// BarAggregator construye dollar, volume y pnl bars en paralelo. Las tres se
// sellan juntas cuando la cantidad base acumulada alcanza el threshold.
// Una barra parcial que nunca llega al threshold no se emite.
type BarAggregator struct {
	threshold float64

	dollar DollarBar
	volume VolumeBar
	pnl    PnlBar

	cumulativeQty float64
	initial       bool

	dollarBars []DollarBar
	volumeBars []VolumeBar
	pnlBars    []PnlBar
}

// NewBarAggregator crea un agregador que sella al alcanzar threshold base units.
func NewBarAggregator(threshold float64) *BarAggregator {
	return &BarAggregator{threshold: threshold, initial: true}
}

// Update incorpora un trade y devuelve true si selló una barra.
func (a *BarAggregator) Update(in BarInput) bool {
	if a.initial {
		a.dollar.Datetime = in.Datetime
		a.volume.Datetime = in.Datetime
		a.pnl.Datetime = in.Datetime
		a.dollar.Open = in.Price
		a.dollar.High = in.Price
		a.dollar.Low = in.Price
		a.initial = false
	}

	a.dollar.Close = in.Price
	if in.Price > a.dollar.High {
		a.dollar.High = in.Price
	}
	if in.Price < a.dollar.Low {
		a.dollar.Low = in.Price
	}

	a.volume.VolumeBuy += in.VolumeBuy
	a.volume.VolumeSell += in.VolumeSell

	a.pnl.InternalRealizedPnL = in.InternalPnL
	a.pnl.ExternalRealizedPnL = in.ExternalPnL

	a.cumulativeQty += in.BaseQty
	if a.cumulativeQty < a.threshold {
		return false
	}

	a.dollarBars = append(a.dollarBars, a.dollar)
	a.volumeBars = append(a.volumeBars, a.volume)
	a.pnlBars = append(a.pnlBars, a.pnl)
	a.dollar = DollarBar{}
	a.volume = VolumeBar{}
	a.pnl = PnlBar{}
	a.cumulativeQty = 0
	a.initial = true
	return true
}

// Pending indica si hay una barra en curso sin sellar.
func (a *BarAggregator) Pending() bool { return !a.initial }

// CumulativeQty devuelve la cantidad base acumulada en la barra en curso.
func (a *BarAggregator) CumulativeQty() float64 { return a.cumulativeQty }

func (a *BarAggregator) DollarBars() []DollarBar { return a.dollarBars }
func (a *BarAggregator) VolumeBars() []VolumeBar { return a.volumeBars }
func (a *BarAggregator) PnlBars() []PnlBar       { return a.pnlBars }
