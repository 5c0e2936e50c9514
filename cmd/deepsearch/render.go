// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deepsearch/internal/render"
	"github.com/pdiddy/deepsearch/internal/state"
	"github.com/pdiddy/deepsearch/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Re-render a stored report",
	Long: `Render loads a persisted run from the state database and writes fresh
Markdown and HTML output. Without --report-id it lists the stored runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, _ := cmd.Flags().GetString("report-id")

		cfg := pipelineConfig()
		w := cmd.OutOrStdout()

		store, err := state.NewStore(cfg.Output.StateDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if reportID == "" {
			summaries, err := store.ListReports(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(w, "No stored reports.")
				return nil
			}
			for _, s := range summaries {
				status := "in progress"
				if s.Completed {
					status = "completed"
				}
				fmt.Fprintf(w, "%s  %s  %s  (%s)\n",
					s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.ReportTitle, status)
			}
			return nil
		}

		runState, err := store.LoadReport(cmd.Context(), reportID)
		if err != nil {
			return err
		}

		var charts *types.ChartDataSet
		set, err := store.LoadChartData(cmd.Context(), runState.Query)
		if err == nil && len(set.Slots) > 0 {
			charts = &set
		}

		mdPath, err := render.WriteMarkdown(runState, cfg.Output.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "markdown report: %s\n", mdPath)

		htmlPath, err := render.WriteHTML(runState, charts, cfg.Output.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "html report: %s\n", htmlPath)

		return nil
	},
}

func init() {
	renderCmd.Flags().String("report-id", "", "ID of the stored report to render")

	rootCmd.AddCommand(renderCmd)
}
