package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Prabhakar2095/Budget-Working/internal/calculator"
	"github.com/Prabhakar2095/Budget-Working/internal/format"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

func newCalcCmd() *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate a snapshot file and print the P&L summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(snapshotPath)
			if err != nil {
				return err
			}
			var snap model.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("failed to decode snapshot: %w", err)
			}
			snap.EnsureMaps()
			snap.NormalizeRateKeys()

			res, err := calculator.ComputeRevenue(&snap)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot JSON file")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

// writeSummary prints year totals in millions.
func writeSummary(w io.Writer, r *calculator.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s %s\t(millions)\t\n", r.LOB, r.FiscalYear)

	amount := func(label string, v float64) {
		fmt.Fprintf(tw, "%s\t%s\t\n", label, format.Amount(v, 2, false))
	}
	pct := func(label string, v float64) {
		fmt.Fprintf(tw, "%s\t%s\t\n", label, format.Percent(v))
	}
	p := r.PnL
	amount("One-time Revenue", p.OneTimeRevenue.Total)
	amount("Recurring Revenue", p.RecurringRevenue.Total)
	amount("Gross Revenue", p.GrossRevenue.Total)
	amount("Provision", p.Provision.Total)
	amount("Net Revenue", p.NetRevenue.Total)
	amount("Total Opex", r.TotalOpex.Total)
	amount("Operating Margin", p.OperatingMargin.Total)
	pct("OM %", p.OperatingMarginPct.Total)
	amount("OM after Penalty", p.OperatingMarginAfterPenalty.Total)
	amount("Total Capex", r.TotalCapex.Total)
	amount("Net Cashflow", r.Funding.NetCashflow.Total)
	amount("Peak Funding", r.PeakFunding)
	for _, warn := range r.Warnings {
		fmt.Fprintf(tw, "warning: %s\t\t\n", warn)
	}
	return tw.Flush()
}
