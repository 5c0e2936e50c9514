// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deepsearch/internal/chartdata"
	"github.com/pdiddy/deepsearch/internal/render"
	"github.com/pdiddy/deepsearch/internal/state"
)

var chartdataCmd = &cobra.Command{
	Use:   "chartdata",
	Short: "Extract chart-ready numeric data for a topic",
	Long: `Chartdata runs three validity-driven extraction loops against the topic,
one per chart shape (bar, line, pie), and writes a plain-text data report.
Slots that exhaust their attempt budget fall back to canned data and are
flagged as synthetic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if topic == "" {
			return fmt.Errorf("--topic is required")
		}
		saveState, _ := cmd.Flags().GetBool("save-state")

		cfg := pipelineConfig()
		gen, provider := buildClients(cfg)
		w := cmd.OutOrStdout()

		loop := &chartdata.SlotLoop{
			Gen:       gen,
			Search:    provider,
			AI:        cfg.Generation,
			SearchCfg: cfg.Search,
			Cfg:       cfg.ChartData,
		}
		set, err := loop.Run(cmd.Context(), topic, w)
		if err != nil {
			return err
		}

		content := chartdata.BuildDataReport(set)
		path, err := render.WriteDataReport(content, chartdata.ReportFilename(set.GeneratedAt), cfg.Output.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "data report: %s\n", path)

		if saveState {
			store, err := state.NewStore(cfg.Output.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveChartData(cmd.Context(), set); err != nil {
				return err
			}
			fmt.Fprintf(w, "state saved: chart data for %q\n", topic)
		}

		return nil
	},
}

func init() {
	chartdataCmd.Flags().String("topic", "", "topic to extract chart data for")
	chartdataCmd.Flags().Bool("save-state", false, "persist extraction slots to the state database")

	rootCmd.AddCommand(chartdataCmd)
}
