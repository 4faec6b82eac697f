package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the engine's current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := cmdCtx(cmd)
			defer cancel()
			st, err := client().Status(ctx)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"enabled", st.Enabled},
				{"pixels", st.Count},
				{"brightness", fmt.Sprintf("%.2f", st.Brightness)},
				{"speed", fmt.Sprintf("%.2f", st.Speed)},
				{"idle", st.Idle},
			})
			t.AppendSeparator()
			show := "-"
			if st.ShowActive {
				show = fmt.Sprintf("%s (%.1fs left)", st.Show, float64(st.ShowMsRemaining)/1000)
			}
			demo := "off"
			if st.Demo {
				demo = fmt.Sprintf("on, every %ds", st.DemoIntervalS)
			}
			t.AppendRows([]table.Row{
				{"show", show},
				{"demo", demo},
			})
			t.AppendSeparator()
			progress := "off"
			if st.ProgressModeEnabled {
				progress = "enabled, idle"
				if st.ProgressActive {
					progress = fmt.Sprintf("%s %.0f%%", st.ProgressState, st.ProgressPct*100)
				}
			}
			t.AppendRows([]table.Row{
				{"progress", progress},
				{"arc", fmt.Sprintf("%d..%d", st.ArcStart, st.ArcEnd)},
			})
			t.AppendSeparator()
			t.AppendRows([]table.Row{
				{"idle modes", strings.Join(st.IdleModes, ", ")},
				{"show modes", strings.Join(st.ShowModes, ", ")},
				{"events", strings.Join(st.Events, ", ")},
			})
			t.Render()
			return nil
		},
	}
}
