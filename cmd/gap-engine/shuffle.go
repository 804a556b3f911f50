// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gap-engine/internal/cube"
	"github.com/pdiddy/gap-engine/internal/enrich"
	"github.com/pdiddy/gap-engine/pkg/types"
)

var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Run one sample→classify→bucket→persist cycle",
	Long: `Shuffle samples a fresh batch, optionally enriches it with retraction and
citation signals, classifies every document on all three axes, buckets the
batch into the 27-cell cube, and atomically publishes the next generation.

The tick comes from the external driver; unless --force is given the
shuffle only runs when the configured interval has elapsed since the last
persisted generation's tick.`,
	RunE: runShuffle,
}

func runShuffle(cmd *cobra.Command, args []string) error {
	tick, _ := cmd.Flags().GetInt64("tick")
	force, _ := cmd.Flags().GetBool("force")

	samplerCfg, err := samplerConfig()
	if err != nil {
		return err
	}
	shuffleCfg := shuffleConfig()
	if dir, _ := cmd.Flags().GetString("cube-dir"); dir != "" {
		shuffleCfg.CubeDir = dir
	}

	sampler, closeCache, err := buildSampler(samplerCfg, warnWriter())
	if err != nil {
		return err
	}
	defer closeCache()

	store, err := cube.NewStore(shuffleCfg.CubeDir)
	if err != nil {
		return err
	}

	var enricher enrich.Enricher
	if path, _ := cmd.Flags().GetString("enrich-fixture"); path != "" {
		enricher, err = enrich.LoadFixture(path)
		if err != nil {
			return err
		}
	}

	shuffler := cube.NewShuffler(sampler, enricher, nil, store, shuffleCfg)

	prior, err := store.Latest()
	if err != nil && !errors.Is(err, cube.ErrNoGeneration) {
		return err
	}

	lastTick := int64(-1)
	if prior != nil {
		lastTick = prior.CreatedAtTick
	}
	if cmd.Flags().Changed("last-tick") {
		lastTick, _ = cmd.Flags().GetInt64("last-tick")
	}
	if !force && !shuffler.ShouldShuffle(tick, lastTick) {
		fmt.Printf("shuffle not due: tick %d, last shuffle at tick %d, interval %d\n",
			tick, lastTick, shuffleCfg.Interval)
		return nil
	}

	snapshot, err := shuffler.Shuffle(context.Background(), tick, prior, os.Stdout)
	if err != nil {
		if errors.Is(err, cube.ErrInsufficientSample) && prior != nil {
			fmt.Fprintf(os.Stderr, "shuffle aborted, generation %d remains current\n", prior.Generation)
		}
		return err
	}

	fmt.Printf("generation %d: %d documents across %d cells\n",
		snapshot.Generation, snapshot.TotalDocuments, types.CellCount)
	return nil
}

func init() {
	shuffleCmd.Flags().Int64("tick", 0, "current tick from the external driver")
	shuffleCmd.Flags().Int64("last-tick", -1, "override the last shuffle tick (default: latest generation's tick)")
	shuffleCmd.Flags().Bool("force", false, "shuffle even if the interval has not elapsed")
	shuffleCmd.Flags().String("cube-dir", "", "snapshot directory (default: config shuffle.cube_dir)")
	shuffleCmd.Flags().String("enrich-fixture", "", "YAML file of retraction/citation signals keyed by document ID")

	rootCmd.AddCommand(shuffleCmd)
}
