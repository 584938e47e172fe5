package notify

import (
	"fmt"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintRuns lista los runs persistidos, más recientes primero.
func (c *Console) PrintRuns(runs []domain.RunInfo) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no stored runs")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Started", "Network", "Pool", "Threshold", "Trades", "Skipped", "Accounts")
	for _, r := range runs {
		if err := table.Append(
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Network,
			shortAddr(r.Pool),
			fmt.Sprintf("%.4g", r.BarThreshold),
			fmt.Sprintf("%d", r.Trades),
			fmt.Sprintf("%d", r.Skipped),
			fmt.Sprintf("%d", r.Accounts),
		); err != nil {
			return fmt.Errorf("notify.PrintRuns: %w", err)
		}
	}
	return table.Render()
}
