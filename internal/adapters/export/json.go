package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

const AnalysisFile = "analysis.json"

// JSONWriter implementa ports.AnalysisExporter escribiendo un único analysis.json.
type JSONWriter struct {
	dir string
}

// NewJSONWriter crea un writer que escribe en dir (se crea si no existe).
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Export escribe sólo las keys de las series presentes; una serie habilitada
// pero vacía se escribe como [].
func (w *JSONWriter) Export(_ context.Context, a domain.Analysis) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("export.JSON: create dir: %w", err)
	}

	out := make(map[string]any, 4)
	if a.HasDollarBars() {
		out["dollar_bars"] = a.DollarBars
	}
	if a.HasVolumeBars() {
		out["volume_bars"] = a.VolumeBars
	}
	if a.HasPnlBars() {
		out["pnl_bars"] = a.PnlBars
	}
	if a.HasTransactions() {
		out["transactions"] = a.Transactions
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export.JSON: encode: %w", err)
	}
	path := filepath.Join(w.dir, AnalysisFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export.JSON: write %q: %w", path, err)
	}
	return nil
}
