package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxy-go/ladforge/lad"
)

// Exit codes (spec.md §6): 0 success, 1 I/O error, 2 input geometry
// malformed (or any other internal/library failure).
const (
	exitOK             = 0
	exitIO             = 1
	exitInputMalformed = 2
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ladforge",
	Short: "Build hierarchical cluster-LOD mesh assets",
	Long: `ladforge turns a flat input mesh into a memory-mappable, hierarchical
cluster-based level-of-detail asset suitable for GPU-driven rendering.`,
}

// Execute runs the root command and exits the process with the matching
// exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose progress logging")
}

// exitCodeFor maps a pipeline error to its process exit code: an I/O
// failure is 1; malformed input geometry, library-contract violations, and
// invariant failures are all 2.
func exitCodeFor(err error) int {
	if errors.Is(err, lad.ErrIO) {
		return exitIO
	}
	return exitInputMalformed
}
