// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deepsearch/internal/chartdata"
	"github.com/pdiddy/deepsearch/internal/render"
	"github.com/pdiddy/deepsearch/internal/report"
	"github.com/pdiddy/deepsearch/internal/state"
	"github.com/pdiddy/deepsearch/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run the full deep research pipeline for a topic",
	Long: `Research proposes a report structure for the topic, refines each section
through search and reflection rounds, assembles the final report, and writes
Markdown and HTML output. With --charts it first extracts chart-ready data
for the topic and embeds it in the HTML report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("query")
		if topic == "" {
			return fmt.Errorf("--query is required")
		}
		withCharts, _ := cmd.Flags().GetBool("charts")

		cfg := pipelineConfig()
		gen, provider := buildClients(cfg)
		w := cmd.OutOrStdout()

		var charts *types.ChartDataSet
		if withCharts {
			fmt.Fprintf(w, "extracting chart data for %q\n", topic)
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
			charts = &set
		}

		orch := &report.Orchestrator{
			Gen:       gen,
			Search:    provider,
			AI:        cfg.Generation,
			SearchCfg: cfg.Search,
			Report:    cfg.Report,
		}
		runState, err := orch.Run(cmd.Context(), topic, w)
		if err != nil {
			return err
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

		if cfg.Output.SaveState {
			store, err := state.NewStore(cfg.Output.StateDir)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveReport(cmd.Context(), runState); err != nil {
				return err
			}
			if charts != nil {
				if err := store.SaveChartData(cmd.Context(), *charts); err != nil {
					return err
				}
			}
			fmt.Fprintf(w, "state saved: report %s\n", runState.ID)
		}

		return nil
	},
}

func init() {
	researchCmd.Flags().String("query", "", "research topic")
	researchCmd.Flags().Int("max-reflections", 0, "reflection rounds per section (overrides config)")
	researchCmd.Flags().Int("concurrency", 0, "sections refined in parallel (overrides config)")
	researchCmd.Flags().Bool("charts", false, "extract chart data and embed it in the HTML report")
	researchCmd.Flags().String("output-dir", "", "directory for rendered reports (overrides config)")
	researchCmd.Flags().Bool("save-state", false, "persist run state to the state database")

	viper.BindPFlag("report.max_reflections", researchCmd.Flags().Lookup("max-reflections"))
	viper.BindPFlag("report.concurrency", researchCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("output.output_dir", researchCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("output.save_state", researchCmd.Flags().Lookup("save-state"))

	rootCmd.AddCommand(researchCmd)
}
