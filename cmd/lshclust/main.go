package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/version"
	"github.com/ludo-technologies/lshclust/service"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lshclust",
		Short: "Approximate clustering of numeric vectors with locality-sensitive hashing",
		Long: `lshclust groups numeric vectors into a target number of clusters.

Vectors are hashed into banded buckets with random projections, samples that
collide in any band are chained into candidate groups, overlapping groups are
coalesced, and the smallest groups are dissolved into their nearest neighbours
until the requested number of clusters remains.

Input is delimited text: one sample per row, an optional label in the first
column, then the numeric components.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewClusterCmd())
	rootCmd.AddCommand(NewNeighborsCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to an exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		printError(stderr, err, verbose)
		return domain.ExitCode(err)
	}
	return domain.ExitCodeSuccess
}

// printError writes the categorized error and recovery suggestions
func printError(w io.Writer, err error, verbose bool) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %s\n", categorized.Message)
	if categorized.Message != err.Error() {
		fmt.Fprintf(w, "  %v\n", err)
	}

	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		limit := len(suggestions)
		if !verbose && limit > 2 {
			limit = 2
		}
		for _, s := range suggestions[:limit] {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}
