package domain

import (
	"errors"
	"fmt"
)

var (
	ErrZeroBaseAmount = errors.New("zero base amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrNonFinitePrice = errors.New("price is not finite")

	// ErrAmountOutOfRange: el decimal es válido pero no cabe en un float64.
	ErrAmountOutOfRange = errors.New("amount out of float64 range")
)

// ParseError indica que un campo numérico de un TradeRecord no se pudo parsear.
type ParseError struct {
	Index int    // posición del record en la secuencia de entrada
	Field string // nombre del campo: block_number, base_amount, quote_amount
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trade %d: parse %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NumericError indica una operación aritmética inválida al derivar el precio.
type NumericError struct {
	Index  int
	TxHash string
	Field  string
	Value  float64
	Err    error
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("trade %d (tx %s): %s=%v: %v", e.Index, e.TxHash, e.Field, e.Value, e.Err)
}

func (e *NumericError) Unwrap() error { return e.Err }

// LookupError indica que un identificador configurado no aparece en los datos adquiridos.
type LookupError struct {
	Kind string // "network", "pool", ...
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found in acquired data", e.Kind, e.Key)
}
