package main

import (
	"github.com/spf13/cobra"
)

// NeighborsCommand handles the neighbors CLI command
type NeighborsCommand struct {
	flags    clusterFlags
	sample   int
	minBands int
}

// NewNeighborsCommand creates a new neighbors command
func NewNeighborsCommand() *NeighborsCommand {
	return &NeighborsCommand{
		flags:    newClusterFlags(),
		sample:   -1,
		minBands: 1,
	}
}

// CreateCobraCommand creates the cobra command for neighbour queries
func (n *NeighborsCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors [files...] --sample ID",
		Short: "List the LSH candidates of one sample",
		Long: `Hash the input and list every sample that shares a bucket with the
given sample in at least --min-bands bands, nearest first.

Sample IDs are zero-based row positions across all input files in order.
Without arguments the input.paths list of the configuration file is used.

Examples:
  # Candidates of the first sample
  lshclust neighbors --sample 0 points.csv

  # Only samples colliding in at least 5 of 25 bands
  lshclust neighbors --sample 42 --min-bands 5 data/`,
		Args: cobra.ArbitraryArgs,
		RunE: n.runNeighbors,
	}

	n.flags.register(cmd)
	cmd.Flags().IntVar(&n.sample, "sample", n.sample, "Sample ID to query")
	cmd.Flags().IntVar(&n.minBands, "min-bands", n.minBands, "Minimum number of shared bands")
	_ = cmd.MarkFlagRequired("sample")
	_ = cmd.Flags().MarkHidden("clusters")
	_ = cmd.Flags().MarkHidden("mean-policy")
	_ = cmd.Flags().MarkHidden("assign-untouched")

	return cmd
}

func (n *NeighborsCommand) runNeighbors(cmd *cobra.Command, args []string) error {
	request, err := n.flags.request(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	useCase, err := n.flags.useCase(cmd, logger)
	if err != nil {
		return err
	}
	_, err = useCase.Neighbors(cmd.Context(), *request, n.sample, n.minBands)
	return err
}

// NewNeighborsCmd creates and returns the neighbors cobra command
func NewNeighborsCmd() *cobra.Command {
	return NewNeighborsCommand().CreateCobraCommand()
}
