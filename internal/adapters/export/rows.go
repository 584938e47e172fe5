package export

import "github.com/alejandrodnm/dexledger/internal/domain"

// Filas CSV. Los nombres de columna siguen los de las series JSON.

type dollarBarRow struct {
	Datetime string  `csv:"datetime"`
	Open     float64 `csv:"open"`
	High     float64 `csv:"high"`
	Low      float64 `csv:"low"`
	Close    float64 `csv:"close"`
}

type volumeBarRow struct {
	Datetime   string  `csv:"datetime"`
	VolumeBuy  float64 `csv:"volume_buy"`
	VolumeSell float64 `csv:"volume_sell"`
}

type pnlBarRow struct {
	Datetime            string  `csv:"datetime"`
	InternalRealizedPnL float64 `csv:"internal_realized_pnl"`
	ExternalRealizedPnL float64 `csv:"external_realized_pnl"`
}

type transactionRow struct {
	Block                uint64  `csv:"block"`
	BlockTime            string  `csv:"block_time"`
	TxHash               string  `csv:"transaction"`
	Side                 string  `csv:"side"`
	Account              string  `csv:"account"`
	AccountTradeCount    uint64  `csv:"account_trades"`
	AccountWon           uint64  `csv:"account_won"`
	AccountLost          uint64  `csv:"account_lost"`
	AccountOpenPositions int     `csv:"account_open_positions"`
	VolumeBase           float64 `csv:"amount_base"`
	VolumeQuote          float64 `csv:"amount_quote"`
	Price                float64 `csv:"price"`
	RealizedPnL          float64 `csv:"internal_realized_pnl"`
	ExternalPnL          float64 `csv:"external_realized_pnl"`
	UnrealizedPnL        float64 `csv:"unrealized_pnl"`
	OpenInterest         float64 `csv:"open_interest"`
}

func dollarRows(bars []domain.DollarBar) []dollarBarRow {
	rows := make([]dollarBarRow, len(bars))
	for i, b := range bars {
		rows[i] = dollarBarRow(b)
	}
	return rows
}

func volumeRows(bars []domain.VolumeBar) []volumeBarRow {
	rows := make([]volumeBarRow, len(bars))
	for i, b := range bars {
		rows[i] = volumeBarRow(b)
	}
	return rows
}

func pnlRows(bars []domain.PnlBar) []pnlBarRow {
	rows := make([]pnlBarRow, len(bars))
	for i, b := range bars {
		rows[i] = pnlBarRow(b)
	}
	return rows
}

func transactionRows(txs []domain.TradeTx) []transactionRow {
	rows := make([]transactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = transactionRow{
			Block:                tx.BlockNumber,
			BlockTime:            tx.BlockTime,
			TxHash:               tx.TxHash,
			Side:                 tx.Side.String(),
			Account:              tx.Account,
			AccountTradeCount:    tx.AccountTradeCount,
			AccountWon:           tx.AccountWon,
			AccountLost:          tx.AccountLost,
			AccountOpenPositions: tx.AccountOpenPositions,
			VolumeBase:           tx.VolumeBase,
			VolumeQuote:          tx.VolumeQuote,
			Price:                tx.Price,
			RealizedPnL:          tx.RealizedPnL,
			ExternalPnL:          tx.ExternalPnL,
			UnrealizedPnL:        tx.UnrealizedPnL,
			OpenInterest:         tx.OpenInterest,
		}
	}
	return rows
}
