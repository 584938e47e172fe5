package ports

import (
	"context"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

// Storage persiste el resultado de cada ejecución.
type Storage interface {
	// SaveRun persiste la ejecución y sus series habilitadas. Devuelve el ID del run.
	SaveRun(ctx context.Context, info domain.RunInfo, analysis domain.Analysis) (string, error)

	// GetRuns devuelve las ejecuciones registradas, más recientes primero.
	GetRuns(ctx context.Context) ([]domain.RunInfo, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
