package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/lsh"
	"github.com/ludo-technologies/lshclust/service"
)

// GenerateCommand handles the generate CLI command
type GenerateCommand struct {
	config    lsh.GeneratorConfig
	delimiter string
	output    string
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand() *GenerateCommand {
	return &GenerateCommand{
		config:    lsh.DefaultGeneratorConfig(),
		delimiter: domain.DefaultDelimiter,
	}
}

// CreateCobraCommand creates the cobra command for synthetic data generation
func (g *GenerateCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic labelled dataset of Gaussian clusters",
		Long: `Write Gaussian clusters as delimited text, one labelled sample per row.

Labels have the form c<cluster>_<index>, so cluster purity can be measured
when the file is clustered again.

Examples:
  # Three clusters of 20 points in 2D to stdout
  lshclust generate

  # A harder 16-dimensional set written to a file
  lshclust generate --clusters 8 --per-cluster 500 --dim 16 --spread 4 -o blobs.csv`,
		Args: cobra.NoArgs,
		RunE: g.runGenerate,
	}

	cmd.Flags().IntVar(&g.config.Clusters, "clusters", g.config.Clusters, "Number of clusters")
	cmd.Flags().IntVar(&g.config.PerCluster, "per-cluster", g.config.PerCluster, "Samples per cluster")
	cmd.Flags().IntVar(&g.config.Dim, "dim", g.config.Dim, "Vector dimension")
	cmd.Flags().Float64Var(&g.config.Spread, "spread", g.config.Spread, "Standard deviation around each centre")
	cmd.Flags().Float64Var(&g.config.Separation, "separation", g.config.Separation, "Centres are drawn from [-separation, separation]")
	cmd.Flags().Int64Var(&g.config.Seed, "seed", g.config.Seed, "Random seed")
	cmd.Flags().BoolVar(&g.config.Shuffle, "shuffle", g.config.Shuffle, "Interleave the clusters")
	cmd.Flags().StringVar(&g.delimiter, "delimiter", g.delimiter, "Field delimiter")
	cmd.Flags().StringVarP(&g.output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func (g *GenerateCommand) runGenerate(cmd *cobra.Command, args []string) error {
	ds, err := lsh.GenerateDataset(g.config)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()
	logger.Debug("generated dataset")

	writer := service.NewFileOutputWriter(cmd.ErrOrStderr())
	return writer.Write(cmd.OutOrStdout(), g.output, domain.OutputFormatCSV, func(w io.Writer) error {
		return service.WriteDataset(w, ds, g.delimiter, true)
	})
}

// NewGenerateCmd creates and returns the generate cobra command
func NewGenerateCmd() *cobra.Command {
	return NewGenerateCommand().CreateCobraCommand()
}
