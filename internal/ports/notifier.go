package ports

import (
	"context"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

// Notifier presenta el resultado de una ejecución al usuario.
type Notifier interface {
	Notify(ctx context.Context, report domain.RunReport) error
}
