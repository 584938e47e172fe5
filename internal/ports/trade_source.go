package ports

import (
	"context"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

// TradeSource entrega la secuencia completa de trades de un pool.
type TradeSource interface {
	// LoadTrades devuelve los records en orden cronológico (bloque más antiguo primero).
	LoadTrades(ctx context.Context) ([]domain.TradeRecord, error)
}
