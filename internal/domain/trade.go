package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Side es la dirección de un trade desde el punto de vista de la cuenta.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// String implementa fmt.Stringer.
func (s Side) String() string { return string(s) }

// TradeRecord es un fill tal como lo entrega la capa de adquisición.
// Todos los campos numéricos llegan como strings y se decodifican con DecodeTrade.
type TradeRecord struct {
	BlockNumber   string
	BlockTime     string
	TxHash        string
	Sender        string // Transaction.From: la cuenta que origina el trade
	Buyer         string
	Seller        string
	BaseAmount    string
	QuoteAmount   string
	Pool          string
	BaseCurrency  string
	QuoteCurrency string
	Protocol      string
}

// Trade es un fill decodificado. Inmutable una vez construido.
type Trade struct {
	BlockNumber   uint64
	BlockTime     string
	TxHash        string
	Sender        string
	Buyer         string
	Seller        string
	BaseAmount    float64
	QuoteAmount   float64
	Pool          string
	BaseCurrency  string
	QuoteCurrency string
}

// DecodeTrade convierte un TradeRecord en Trade. index es la posición del
// record en la secuencia de entrada y sólo se usa para dar contexto al error.
//
// Los importes se parsean con decimal estricto: "1e", "abc", "" o "NaN" fallan
// con *ParseError en vez de convertirse silenciosamente.
func DecodeTrade(index int, r TradeRecord) (Trade, error) {
	block, err := strconv.ParseUint(strings.TrimSpace(r.BlockNumber), 10, 64)
	if err != nil {
		return Trade{}, &ParseError{Index: index, Field: "block_number", Value: r.BlockNumber, Err: err}
	}

	base, err := parseAmount(r.BaseAmount)
	if err != nil {
		return Trade{}, &ParseError{Index: index, Field: "base_amount", Value: r.BaseAmount, Err: err}
	}
	quote, err := parseAmount(r.QuoteAmount)
	if err != nil {
		return Trade{}, &ParseError{Index: index, Field: "quote_amount", Value: r.QuoteAmount, Err: err}
	}

	return Trade{
		BlockNumber:   block,
		BlockTime:     r.BlockTime,
		TxHash:        r.TxHash,
		Sender:        r.Sender,
		Buyer:         r.Buyer,
		Seller:        r.Seller,
		BaseAmount:    base,
		QuoteAmount:   quote,
		Pool:          r.Pool,
		BaseCurrency:  r.BaseCurrency,
		QuoteCurrency: r.QuoteCurrency,
	}, nil
}

func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrAmountOutOfRange
	}
	return f, nil
}

// ClassifySide devuelve Buy si el comprador no es el pool, Sell en otro caso.
// Comparación literal de strings: no se normaliza el case de la dirección.
func ClassifySide(t Trade, pool string) Side {
	if t.Buyer != pool {
		return SideBuy
	}
	return SideSell
}

// Price devuelve quote/base. Un base amount cero o negativo, o un cociente que
// desborda float64, es un *NumericError: nunca se propaga NaN ni Inf hacia el
// ledger o las barras.
func Price(index int, t Trade) (float64, error) {
	if t.BaseAmount == 0 {
		return 0, &NumericError{Index: index, TxHash: t.TxHash, Field: "base_amount", Value: t.BaseAmount, Err: ErrZeroBaseAmount}
	}
	if t.BaseAmount < 0 {
		return 0, &NumericError{Index: index, TxHash: t.TxHash, Field: "base_amount", Value: t.BaseAmount, Err: ErrNegativeAmount}
	}
	if t.QuoteAmount < 0 {
		return 0, &NumericError{Index: index, TxHash: t.TxHash, Field: "quote_amount", Value: t.QuoteAmount, Err: ErrNegativeAmount}
	}
	price := t.QuoteAmount / t.BaseAmount
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, &NumericError{Index: index, TxHash: t.TxHash, Field: "price", Value: price, Err: ErrNonFinitePrice}
	}
	return price, nil
}
