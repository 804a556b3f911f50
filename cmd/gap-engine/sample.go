// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gap-engine/internal/sample"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Run the weighted multi-source sampler once",
	Long: `Sample fans the configured topic query out to all sources according to
the weight table, merges and deduplicates the results, and prints the
source breakdown. The merged batch is cached so a following shuffle
within the batch TTL reuses it.`,
	RunE: runSample,
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := samplerConfig()
	if err != nil {
		return err
	}
	if query, _ := cmd.Flags().GetString("query"); query != "" {
		cfg.Query = query
	}
	if target, _ := cmd.Flags().GetInt("target"); target > 0 {
		cfg.TargetCount = target
	}

	sampler, closeCache, err := buildSampler(cfg, warnWriter())
	if err != nil {
		return err
	}
	defer closeCache()

	batch, err := sampler.Sample(context.Background(), warnWriter())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}
	sample.FormatTable(batch, os.Stdout)
	return nil
}

func init() {
	sampleCmd.Flags().String("query", "", "topic query (default: config sampler.query)")
	sampleCmd.Flags().Int("target", 0, "target document count (default: config sampler.target_count)")
	sampleCmd.Flags().Bool("json", false, "output the full batch as JSON")

	viper.SetDefault("sampler.timeout", "30s")

	rootCmd.AddCommand(sampleCmd)
}
