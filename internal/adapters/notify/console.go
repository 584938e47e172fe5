package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	maxBarsShown     = 10
	maxAccountsShown = 10
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	quiet bool
}

// NewConsole crea un notificador que escribe a stdout.
// En modo quiet sólo imprime la línea de resumen.
func NewConsole(quiet bool) *Console {
	return &Console{out: os.Stdout, quiet: quiet}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, quiet bool) *Console {
	return &Console{out: w, quiet: quiet}
}

// Notify imprime el resumen del run y, salvo en modo quiet, las tablas.
func (c *Console) Notify(_ context.Context, report domain.RunReport) error {
	c.printHeader(report)
	if c.quiet {
		return nil
	}

	if report.Analysis.HasDollarBars() {
		if err := c.printDollarBars(report.Analysis.DollarBars); err != nil {
			return fmt.Errorf("notify.Notify: %w", err)
		}
	}
	if len(report.Accounts) > 0 {
		if err := c.printAccounts(report.Accounts); err != nil {
			return fmt.Errorf("notify.Notify: %w", err)
		}
	}
	return nil
}

func (c *Console) printHeader(r domain.RunReport) {
	info := r.Info
	fmt.Fprintf(c.out, "\n[%s] %s pool %s: %d trades, %d skipped, %d accounts, last price %.6g\n",
		info.StartedAt.Format("15:04:05"), info.Network, shortAddr(info.Pool),
		info.Trades, info.Skipped, info.Accounts, r.LastPrice)

	a := r.Analysis
	fmt.Fprintf(c.out, "  bars: %d dollar | %d volume | %d pnl | %d txs",
		len(a.DollarBars), len(a.VolumeBars), len(a.PnlBars), len(a.Transactions))
	if r.PendingQty > 0 {
		fmt.Fprintf(c.out, " | pending %.4g/%.4g base (no emitida)", r.PendingQty, info.BarThreshold)
	}
	fmt.Fprintln(c.out)
}

// printDollarBars imprime las últimas barras OHLC.
func (c *Console) printDollarBars(bars []domain.DollarBar) error {
	if len(bars) == 0 {
		fmt.Fprintln(c.out, "  no dollar bars sealed")
		return nil
	}
	start := max(len(bars)-maxBarsShown, 0)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Datetime", "Open", "High", "Low", "Close")
	for i := start; i < len(bars); i++ {
		b := bars[i]
		if err := table.Append(
			fmt.Sprintf("%d", i+1),
			b.Datetime,
			fmt.Sprintf("%.6g", b.Open),
			fmt.Sprintf("%.6g", b.High),
			fmt.Sprintf("%.6g", b.Low),
			fmt.Sprintf("%.6g", b.Close),
		); err != nil {
			return fmt.Errorf("append bar: %w", err)
		}
	}
	return table.Render()
}

// printAccounts imprime las cuentas con mejor PnL realizado.
func (c *Console) printAccounts(accounts []domain.AccountSummary) error {
	shown := accounts[:min(len(accounts), maxAccountsShown)]

	table := tablewriter.NewWriter(c.out)
	table.Header("Account", "Trades", "W/L", "Open", "OI", "Unreal", "Realized", "External")
	for _, a := range shown {
		if err := table.Append(
			shortAddr(a.Address),
			fmt.Sprintf("%d", a.Trades),
			fmt.Sprintf("%d/%d", a.Won, a.Lost),
			fmt.Sprintf("%d", a.OpenPositions),
			fmt.Sprintf("%.4f", a.OpenInterest),
			fmt.Sprintf("%.4f", a.UnrealizedPnL),
			fmt.Sprintf("%.4f", a.RealizedInternal),
			fmt.Sprintf("%.4f", a.RealizedExternal),
		); err != nil {
			return fmt.Errorf("append account: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(accounts) > len(shown) {
		fmt.Fprintf(c.out, "  ... %d more accounts\n", len(accounts)-len(shown))
	}
	return nil
}

// shortAddr abrevia una dirección hex a 0x1234…abcd.
func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
