// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deepsearch CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deepsearch/internal/generate"
	"github.com/pdiddy/deepsearch/internal/search"
	"github.com/pdiddy/deepsearch/internal/secrets"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the deepsearch CLI.
var rootCmd = &cobra.Command{
	Use:   "deepsearch",
	Short: "Iterative deep research reports from web search and an LLM",
	Long: `deepsearch synthesizes multi-section research reports by iteratively
querying a web search API and a text generation API, refining each section
through a fixed number of reflection rounds. It can also extract chart-ready
numeric data for a topic through a validity-driven retry loop with canned
fallbacks.

Subcommands: research (full report pipeline), chartdata (numeric data
extraction only), render (re-render a stored report), version.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deepsearch.yaml or ~/.config/deepsearch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deepsearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deepsearch"))
		}
	}

	viper.SetEnvPrefix("DEEPSEARCH")
	viper.AutomaticEnv()

	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.timeout", "240s")
	viper.SetDefault("search.depth", "basic")
	viper.SetDefault("search.inter_call_delay", "1s")
	viper.SetDefault("search.max_content_length", 1000)
	viper.SetDefault("generation.model", "deepseek-chat")
	viper.SetDefault("generation.timeout", "120s")
	viper.SetDefault("generation.max_retries", 3)
	viper.SetDefault("report.max_reflections", 2)
	viper.SetDefault("report.concurrency", 1)
	viper.SetDefault("chart_data.max_attempts", 3)
	viper.SetDefault("chart_data.attempt_delay", "1s")
	viper.SetDefault("output.output_dir", "output")
	viper.SetDefault("output.state_dir", "state")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configs from viper and loaded secrets.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "deepsearch/" + version,
			},
			APIKey:           secretDefault("tavily-api-key", viper.GetString("search.api_key")),
			MaxResults:       viper.GetInt("search.max_results"),
			Depth:            viper.GetString("search.depth"),
			InterCallDelay:   viper.GetDuration("search.inter_call_delay"),
			MaxContentLength: viper.GetInt("search.max_content_length"),
		},
		Generation: types.AIConfig{
			Model:      viper.GetString("generation.model"),
			APIKey:     secretDefault("deepseek-api-key", viper.GetString("generation.api_key")),
			Timeout:    viper.GetDuration("generation.timeout"),
			MaxRetries: viper.GetInt("generation.max_retries"),
		},
		Report: types.ReportConfig{
			MaxReflections: viper.GetInt("report.max_reflections"),
			Concurrency:    viper.GetInt("report.concurrency"),
		},
		ChartData: types.ChartDataConfig{
			MaxAttempts:  viper.GetInt("chart_data.max_attempts"),
			AttemptDelay: viper.GetDuration("chart_data.attempt_delay"),
		},
		Output: types.OutputConfig{
			OutputDir: viper.GetString("output.output_dir"),
			StateDir:  viper.GetString("output.state_dir"),
			SaveState: viper.GetBool("output.save_state"),
		},
	}
}

// buildClients constructs the shared provider clients from config.
func buildClients(cfg types.PipelineConfig) (generate.Generator, search.Provider) {
	gen := &generate.DeepSeek{
		Config: cfg.Generation,
		Client: &http.Client{Timeout: 5 * time.Minute},
	}
	provider := search.NewLimited(&search.Tavily{
		Client: &http.Client{Timeout: 5 * time.Minute},
	}, cfg.Search)
	return gen, provider
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
