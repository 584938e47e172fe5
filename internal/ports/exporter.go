package ports

import (
	"context"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

// AnalysisExporter escribe las series de un Analysis fuera del proceso.
// Las series ausentes (nil) no se escriben.
type AnalysisExporter interface {
	Export(ctx context.Context, analysis domain.Analysis) error
}
