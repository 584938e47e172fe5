package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/gocarina/gocsv"
)

// Nombres de fichero por serie.
const (
	DollarBarsFile   = "dollar_bars.csv"
	VolumeBarsFile   = "volume_bars.csv"
	PnlBarsFile      = "pnl_bars.csv"
	TransactionsFile = "transactions.csv"
)

// CSVWriter implementa ports.AnalysisExporter escribiendo un CSV por serie presente.
type CSVWriter struct {
	dir string
}

// NewCSVWriter crea un writer que escribe en dir (se crea si no existe).
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Export escribe las series habilitadas. Las ausentes no generan fichero.
func (w *CSVWriter) Export(_ context.Context, a domain.Analysis) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("export.CSV: create dir: %w", err)
	}

	if a.HasDollarBars() {
		if err := w.write(DollarBarsFile, dollarRows(a.DollarBars)); err != nil {
			return err
		}
	}
	if a.HasVolumeBars() {
		if err := w.write(VolumeBarsFile, volumeRows(a.VolumeBars)); err != nil {
			return err
		}
	}
	if a.HasPnlBars() {
		if err := w.write(PnlBarsFile, pnlRows(a.PnlBars)); err != nil {
			return err
		}
	}
	if a.HasTransactions() {
		if err := w.write(TransactionsFile, transactionRows(a.Transactions)); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) write(name string, rows any) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export.CSV: create %q: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("export.CSV: write %q: %w", path, err)
	}
	return f.Close()
}
