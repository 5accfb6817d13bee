package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/app"
	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/service"
)

// clusterFlags holds the flags shared by every command that hashes data
type clusterFlags struct {
	// Input
	configFile     string
	delimiter      string
	header         bool
	labelColumn    bool
	dim            int
	labelSeparator string

	// Hashing
	rows   int
	bands  int
	seed   int64
	family string
	width  float64
	center bool

	// Merging
	clusters        int
	meanPolicy      string
	assignUntouched bool

	// Performance
	workers int
	timeout time.Duration

	// Output
	output string
	json   bool
	yaml   bool
	csv    bool
}

func newClusterFlags() clusterFlags {
	defaults := domain.DefaultClusterRequest()
	return clusterFlags{
		delimiter:      defaults.Delimiter,
		labelColumn:    defaults.LabelColumn,
		labelSeparator: defaults.LabelSeparator,
		rows:           defaults.Rows,
		bands:          defaults.Bands,
		seed:           defaults.Seed,
		family:         string(defaults.Family),
		width:          defaults.BucketWidth,
		center:         defaults.Center,
		clusters:       defaults.ExpectedClusters,
		meanPolicy:     string(defaults.MeanPolicy),
	}
}

func (f *clusterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&f.configFile, "config", "c", f.configFile, "Path to configuration file")
	flags.StringVar(&f.delimiter, "delimiter", f.delimiter, `Field delimiter (use "\t" for tabs)`)
	flags.BoolVar(&f.header, "header", f.header, "Skip the first row of each file")
	flags.BoolVar(&f.labelColumn, "label-column", f.labelColumn, "Treat the first column as a sample label")
	flags.IntVar(&f.dim, "dim", f.dim, "Expected vector dimension (0 infers it from the data)")
	flags.StringVar(&f.labelSeparator, "label-separator", f.labelSeparator, "Label prefix separator used for purity")

	flags.IntVarP(&f.rows, "rows", "r", f.rows, "Hash functions per band")
	flags.IntVarP(&f.bands, "bands", "b", f.bands, "Number of bands")
	flags.Int64Var(&f.seed, "seed", f.seed, "Seed for the random projections")
	flags.StringVar(&f.family, "family", f.family, "Hash family: hyperplane, pstable")
	flags.Float64Var(&f.width, "width", f.width, "Bucket width for the pstable family")
	flags.BoolVar(&f.center, "center", f.center, "Subtract the dataset mean before projecting")

	flags.IntVarP(&f.clusters, "clusters", "k", f.clusters, "Expected number of clusters")
	flags.StringVar(&f.meanPolicy, "mean-policy", f.meanPolicy, "Cluster means while pooling: snapshot, incremental")
	flags.BoolVar(&f.assignUntouched, "assign-untouched", f.assignUntouched, "Assign samples that collided with nothing to the nearest cluster")

	flags.IntVar(&f.workers, "workers", f.workers, "Parallel workers (0 uses all CPUs)")
	flags.DurationVar(&f.timeout, "timeout", f.timeout, "Abort after this long (e.g. 30s, 5m; 0 disables)")

	flags.StringVarP(&f.output, "output", "o", f.output, "Write the report to this file instead of stdout")
	flags.BoolVar(&f.json, "json", false, "Output JSON")
	flags.BoolVar(&f.yaml, "yaml", false, "Output YAML")
	flags.BoolVar(&f.csv, "csv", false, "Output CSV")

	_ = flags.MarkHidden("label-separator")
	_ = flags.MarkHidden("workers")
}

// request builds the CLI side of the request; file configuration is merged later
func (f *clusterFlags) request(cmd *cobra.Command, paths []string) (*domain.ClusterRequest, error) {
	format, _, err := service.NewOutputFormatResolver().Determine(f.json, f.yaml, f.csv)
	if err != nil {
		return nil, err
	}

	return &domain.ClusterRequest{
		Paths:            paths,
		Delimiter:        f.delimiter,
		HasHeader:        f.header,
		LabelColumn:      f.labelColumn,
		Dim:              f.dim,
		LabelSeparator:   f.labelSeparator,
		Rows:             f.rows,
		Bands:            f.bands,
		Seed:             f.seed,
		Family:           domain.HashFamily(f.family),
		BucketWidth:      f.width,
		Center:           f.center,
		ExpectedClusters: f.clusters,
		MeanPolicy:       domain.MeanPolicy(f.meanPolicy),
		AssignUntouched:  f.assignUntouched,
		Workers:          f.workers,
		Timeout:          f.timeout,
		OutputFormat:     format,
		OutputWriter:     cmd.OutOrStdout(),
		OutputPath:       f.output,
		ConfigPath:       f.configFile,
	}, nil
}

// useCase wires the services for one command invocation
func (f *clusterFlags) useCase(cmd *cobra.Command, logger *zap.Logger) (*app.ClusterUseCase, error) {
	progress := service.NewProgressManager("Hashing bands")

	return app.NewClusterUseCaseBuilder().
		WithService(service.NewClusterService(logger, progress)).
		WithDataLoader(service.NewDataLoader(logger)).
		WithFormatter(service.NewClusterFormatter()).
		WithConfigLoader(service.NewClusterConfigurationLoaderWithFlags(logger, GetExplicitFlags(cmd))).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithLogger(logger).
		Build()
}

// ClusterCommand handles the cluster CLI command
type ClusterCommand struct {
	flags       clusterFlags
	showDetails bool
}

// NewClusterCommand creates a new cluster command
func NewClusterCommand() *ClusterCommand {
	return &ClusterCommand{flags: newClusterFlags()}
}

// CreateCobraCommand creates the cobra command for clustering
func (c *ClusterCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster [files...]",
		Short: "Cluster vectors into K groups",
		Long: `Cluster the samples of one or more delimited files into K groups.

Arguments may be files, directories (all .csv, .tsv, .txt and .dat files
below them) or glob patterns such as "data/**/*.csv". Without arguments the
input.paths list of the configuration file is used.

Settings are read from .lshclust.toml (searched upward from the first
input), LSHCLUST_* environment variables and flags; explicit flags win.

Examples:
  # Three clusters with the default 25 bands of 10 hyperplanes
  lshclust cluster -k 3 points.csv

  # p-stable hashing with wider buckets, CSV assignments to a file
  lshclust cluster --family pstable --width 8 -k 5 --csv -o clusters.csv data/

  # Show bucket statistics and per-cluster quality
  lshclust cluster --details points.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCluster,
	}

	c.flags.register(cmd)
	cmd.Flags().BoolVarP(&c.showDetails, "details", "d", false, "Show pipeline statistics and cluster quality")

	return cmd
}

func (c *ClusterCommand) runCluster(cmd *cobra.Command, args []string) error {
	request, err := c.flags.request(cmd, args)
	if err != nil {
		return err
	}
	request.ShowDetails = c.showDetails

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	useCase, err := c.flags.useCase(cmd, logger)
	if err != nil {
		return err
	}
	return useCase.Execute(cmd.Context(), *request)
}

// NewClusterCmd creates and returns the cluster cobra command
func NewClusterCmd() *cobra.Command {
	return NewClusterCommand().CreateCobraCommand()
}
