// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gap-engine/internal/cube"
)

var cubeCmd = &cobra.Command{
	Use:   "cube",
	Short: "Query the latest persisted generation",
	Long: `Cube reads the latest generation snapshot and answers cell-description
and collision-score queries. A stale-but-valid generation answers exactly
like a fresh one; staleness is only visible in the generation number and
timestamp.`,
}

// --- describe subcommand ---

var cubeDescribeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe one cell: labels, counts, top documents",
	RunE:  runCubeDescribe,
}

func runCubeDescribe(cmd *cobra.Command, args []string) error {
	cellIndex, _ := cmd.Flags().GetInt("cell")
	topK, _ := cmd.Flags().GetInt("top")

	shuffler, err := queryShuffler(cmd)
	if err != nil {
		return err
	}

	desc, err := shuffler.DescribeCell(cellIndex, topK)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	fmt.Printf("Cell %d (x=%d y=%d z=%d), generation %d\n",
		desc.Index, desc.X, desc.Y, desc.Z, desc.Generation)
	fmt.Printf("  method:   %s\n", desc.MethodLabel)
	fmt.Printf("  surprise: %s (avg score %.3f)\n", desc.SurpriseLabel, desc.AvgSurpriseScore)
	fmt.Printf("  cluster:  %s\n", desc.ClusterLabel)
	fmt.Printf("  papers:   %d\n\n", desc.PaperCount)

	for i, doc := range desc.TopDocuments {
		title := doc.Title
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		fmt.Printf("  %2d. %-70s  %5d citations  %s\n", i+1, title, doc.CitationCount, doc.SourceName)
	}
	return nil
}

// --- collide subcommand ---

var cubeCollideCmd = &cobra.Command{
	Use:   "collide",
	Short: "Score a cell pair for collision value",
	RunE:  runCubeCollide,
}

func runCubeCollide(cmd *cobra.Command, args []string) error {
	a, _ := cmd.Flags().GetInt("a")
	b, _ := cmd.Flags().GetInt("b")

	shuffler, err := queryShuffler(cmd)
	if err != nil {
		return err
	}

	score, err := shuffler.CollisionScore(a, b)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(score)
	}

	golden := ""
	if score.Golden {
		golden = "  GOLDEN"
	}
	fmt.Printf("collision(%d, %d) = %.4f%s\n", a, b, score.Score, golden)
	fmt.Printf("  method distance:      %.4f\n", score.Components.MethodDistance)
	fmt.Printf("  surprise interaction: %.4f\n", score.Components.SurpriseInteraction)
	fmt.Printf("  semantic distance:    %.4f\n", score.Components.SemanticDistance)
	return nil
}

// --- status subcommand ---

var cubeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print metadata for the latest persisted generation",
	RunE:  runCubeStatus,
}

func runCubeStatus(cmd *cobra.Command, args []string) error {
	store, err := storeFromFlags(cmd)
	if err != nil {
		return err
	}

	snapshot, err := store.Latest()
	if err != nil {
		return err
	}

	fmt.Printf("generation:      %d\n", snapshot.Generation)
	fmt.Printf("run:             %s\n", snapshot.RunID)
	fmt.Printf("created:         %s (tick %d)\n",
		snapshot.CreatedAt.Format("2006-01-02 15:04:05 MST"), snapshot.CreatedAtTick)
	fmt.Printf("total documents: %d\n", snapshot.TotalDocuments)

	names := make([]string, 0, len(snapshot.SourceBreakdown))
	for name := range snapshot.SourceBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	var parts []string
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, snapshot.SourceBreakdown[name]))
	}
	fmt.Printf("sources:         %s\n", strings.Join(parts, ", "))
	fmt.Printf("clusters:        %s | %s | %s\n",
		snapshot.AxisLabels.Cluster[0], snapshot.AxisLabels.Cluster[1], snapshot.AxisLabels.Cluster[2])
	return nil
}

// --- shared helpers ---

func storeFromFlags(cmd *cobra.Command) (*cube.Store, error) {
	cfg := shuffleConfig()
	if dir, _ := cmd.Flags().GetString("cube-dir"); dir != "" {
		cfg.CubeDir = dir
	}
	return cube.NewStore(cfg.CubeDir)
}

// queryShuffler builds a read-only Shuffler over the snapshot store.
// Queries never sample, so no adapters are wired.
func queryShuffler(cmd *cobra.Command) (*cube.Shuffler, error) {
	store, err := storeFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return cube.NewShuffler(nil, nil, nil, store, shuffleConfig()), nil
}

func init() {
	cubeCmd.PersistentFlags().String("cube-dir", "", "snapshot directory (default: config shuffle.cube_dir)")

	cubeDescribeCmd.Flags().Int("cell", 0, "cell index, 0-26")
	cubeDescribeCmd.Flags().Int("top", 0, "number of top documents to include (default: config shuffle.top_documents)")
	cubeDescribeCmd.Flags().Bool("json", false, "output as JSON")

	cubeCollideCmd.Flags().Int("a", 0, "first cell index, 0-26")
	cubeCollideCmd.Flags().Int("b", 0, "second cell index, 0-26")
	cubeCollideCmd.Flags().Bool("json", false, "output as JSON")

	cubeCmd.AddCommand(cubeDescribeCmd)
	cubeCmd.AddCommand(cubeCollideCmd)
	cubeCmd.AddCommand(cubeStatusCmd)

	rootCmd.AddCommand(cubeCmd)
}
