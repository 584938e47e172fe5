package domain

// Criteria selecciona qué series se conservan en el Analysis.
type Criteria struct {
	DollarBars   bool
	VolumeBars   bool
	PnlBars      bool
	Transactions bool
}

// AllSeries habilita las cuatro series.
func AllSeries() Criteria {
	return Criteria{DollarBars: true, VolumeBars: true, PnlBars: true, Transactions: true}
}

// AnyBars indica si alguna serie de barras está habilitada.
func (c Criteria) AnyBars() bool {
	return c.DollarBars || c.VolumeBars || c.PnlBars
}

// TradeTx es el record anotado de un trade.
//
// UnrealizedPnL y OpenInterest son totales de todas las cuentas en el momento
// del trade; AccountWon, AccountLost y AccountOpenPositions son de la cuenta.
type TradeTx struct {
	TxHash               string  `json:"tx_hash"`
	BlockNumber          uint64  `json:"block_number"`
	BlockTime            string  `json:"block_time"`
	Side                 Side    `json:"side"`
	VolumeBase           float64 `json:"volume_base"`
	VolumeQuote          float64 `json:"volume_quote"`
	Price                float64 `json:"price"`
	Account              string  `json:"account"`
	AccountTradeCount    uint64  `json:"account_trade_count"`
	AccountWon           uint64  `json:"account_won"`
	AccountLost          uint64  `json:"account_lost"`
	AccountOpenPositions int     `json:"account_open_positions"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	RealizedPnL          float64 `json:"realized_pnl"`
	ExternalPnL          float64 `json:"external_pnl"`
	OpenInterest         float64 `json:"open_interest"`
}

// Analysis es el resultado de una ejecución. Una serie deshabilitada es nil;
// una serie habilitada sin elementos es un slice vacío no-nil.
type Analysis struct {
	DollarBars   []DollarBar `json:"dollar_bars,omitempty"`
	VolumeBars   []VolumeBar `json:"volume_bars,omitempty"`
	PnlBars      []PnlBar    `json:"pnl_bars,omitempty"`
	Transactions []TradeTx   `json:"transactions,omitempty"`
}

// Assemble retiene sólo las series habilitadas por c.
func Assemble(c Criteria, dollar []DollarBar, volume []VolumeBar, pnl []PnlBar, txs []TradeTx) Analysis {
	var a Analysis
	if c.DollarBars {
		a.DollarBars = nonNil(dollar)
	}
	if c.VolumeBars {
		a.VolumeBars = nonNil(volume)
	}
	if c.PnlBars {
		a.PnlBars = nonNil(pnl)
	}
	if c.Transactions {
		a.Transactions = nonNil(txs)
	}
	return a
}

// HasDollarBars etc. distinguen "ausente" de "vacío".
func (a Analysis) HasDollarBars() bool   { return a.DollarBars != nil }
func (a Analysis) HasVolumeBars() bool   { return a.VolumeBars != nil }
func (a Analysis) HasPnlBars() bool      { return a.PnlBars != nil }
func (a Analysis) HasTransactions() bool { return a.Transactions != nil }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
