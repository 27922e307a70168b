package main

import (
	"fmt"
	"os"

	"github.com/ougirez/supplytwin/internal/domain"
	"github.com/ougirez/supplytwin/internal/pkg/csvtable"
	"github.com/ougirez/supplytwin/internal/service/aggregate"
	"github.com/ougirez/supplytwin/internal/service/kpi"
	"github.com/spf13/cobra"
)

type chartOutput struct {
	Chart domain.ChartData `json:"chart"`
	KPIs  domain.KPIs      `json:"kpis"`
}

func newChartCmd() *cobra.Command {
	var (
		file, output, facility, from, to, groupBy string
		skus                                      []string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Aggregate a downloaded output CSV into chart series and KPIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := domain.ParseOutputKind(output)
			if !ok || !kind.Charted() {
				return fmt.Errorf("output %q cannot be charted", output)
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			table, err := csvtable.ParseBytes(raw)
			if err != nil {
				return err
			}

			f := aggregate.Filter{
				SKUs:     skus,
				Facility: facility,
				From:     from,
				To:       to,
				Output:   kind,
				GroupBy:  aggregate.GroupBy(groupBy),
			}
			rows := aggregate.Apply(table.Rows, f)

			return printJSON(cmd.OutOrStdout(), chartOutput{
				Chart: aggregate.Build(table.Rows, f),
				KPIs:  kpi.Compute(map[domain.OutputKind][]domain.Row{kind: rows}),
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "output CSV file")
	cmd.Flags().StringVar(&output, "output", string(domain.OutputInventory), "output kind: inventory|production|flow|occurrence")
	cmd.Flags().StringSliceVar(&skus, "sku", nil, "SKUs to keep (repeatable or comma separated)")
	cmd.Flags().StringVar(&facility, "facility", "", "facility to keep")
	cmd.Flags().StringVar(&from, "from", "", "first date to keep (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date to keep (YYYY-MM-DD)")
	cmd.Flags().StringVar(&groupBy, "group-by", string(aggregate.GroupBySKU), "series grouping: sku|facility")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
