package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxy-go/ladforge/build"
	"github.com/oxy-go/ladforge/buildstats"
	"github.com/oxy-go/ladforge/lad"
	"github.com/oxy-go/ladforge/meshinput"
)

var (
	outputPath  string
	workerCount int
)

var buildCmd = &cobra.Command{
	Use:   "build <input.obj>",
	Short: "Build a cluster-LOD asset from a Wavefront OBJ mesh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("ladforge: %w", lad.Wrap(lad.ErrIO, -1, -1, -1, err.Error()))
		}
		defer f.Close()

		mesh, err := meshinput.LoadOBJ(f)
		if err != nil {
			return err
		}

		var stats *buildstats.Stats
		if verbose {
			stats = buildstats.New()
		}

		result, err := build.Run(mesh, outputPath, build.Options{
			WorkerCount: workerCount,
			Stats:       stats,
		})
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s: %d clusters (%d roots), %d vertices, %d vertex indices, %d primitive index bytes\n",
			outputPath, result.TotalClusters, result.RootClusters, result.OutputVertices, result.OutputVIndices, result.OutputPIndices)
		if stats != nil {
			fmt.Printf("total elapsed: %s\n", stats.TotalElapsed().Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "out.lad", "output asset path")
	buildCmd.Flags().IntVarP(&workerCount, "workers", "w", max(runtime.NumCPU()-1, 1), "worker pool size for per-level group fan-out")
	rootCmd.AddCommand(buildCmd)
}
