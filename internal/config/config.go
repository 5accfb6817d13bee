package config

import (
	"fmt"
	"time"

	"github.com/ludo-technologies/lshclust/domain"
)

// Config represents the main configuration structure
type Config struct {
	// Input controls how data files are read
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input" json:"input"`

	// LSH holds the band hashing parameters
	LSH LSHConfig `mapstructure:"lsh" toml:"lsh" yaml:"lsh" json:"lsh"`

	// Merge holds the group merging parameters
	Merge MergeConfig `mapstructure:"merge" toml:"merge" yaml:"merge" json:"merge"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output" json:"output"`

	// Performance tuning
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance" yaml:"performance" json:"performance"`
}

// InputConfig holds data loading configuration
type InputConfig struct {
	// Paths are files or glob patterns to load when none are given on the command line
	Paths []string `mapstructure:"paths" toml:"paths" yaml:"paths" json:"paths"`

	// Delimiter separates fields, a single character
	Delimiter string `mapstructure:"delimiter" toml:"delimiter" yaml:"delimiter" json:"delimiter"`

	// HasHeader skips the first record of every file
	HasHeader bool `mapstructure:"has_header" toml:"has_header" yaml:"has_header" json:"has_header"`

	// LabelColumn treats the first field as a label, not a coordinate
	LabelColumn bool `mapstructure:"label_column" toml:"label_column" yaml:"label_column" json:"label_column"`

	// Dim is the expected vector dimension, 0 infers it from the data
	Dim int `mapstructure:"dim" toml:"dim" yaml:"dim" json:"dim"`

	// LabelSeparator splits a label into its class prefix for purity
	LabelSeparator string `mapstructure:"label_separator" toml:"label_separator" yaml:"label_separator" json:"label_separator"`
}

// LSHConfig holds hashing configuration
type LSHConfig struct {
	Rows        int     `mapstructure:"rows" toml:"rows" yaml:"rows" json:"rows"`
	Bands       int     `mapstructure:"bands" toml:"bands" yaml:"bands" json:"bands"`
	Seed        int64   `mapstructure:"seed" toml:"seed" yaml:"seed" json:"seed"`
	Family      string  `mapstructure:"family" toml:"family" yaml:"family" json:"family"`
	BucketWidth float64 `mapstructure:"bucket_width" toml:"bucket_width" yaml:"bucket_width" json:"bucket_width"`
	Center      bool    `mapstructure:"center" toml:"center" yaml:"center" json:"center"`
}

// MergeConfig holds merge-to-target configuration
type MergeConfig struct {
	ExpectedClusters int    `mapstructure:"expected_clusters" toml:"expected_clusters" yaml:"expected_clusters" json:"expected_clusters"`
	MeanPolicy       string `mapstructure:"mean_policy" toml:"mean_policy" yaml:"mean_policy" json:"mean_policy"`
	AssignUntouched  bool   `mapstructure:"assign_untouched" toml:"assign_untouched" yaml:"assign_untouched" json:"assign_untouched"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format: text, json, yaml, csv
	Format string `mapstructure:"format" toml:"format" yaml:"format" json:"format"`

	// ShowDetails includes per-cluster quality and bucket statistics in text output
	ShowDetails bool `mapstructure:"show_details" toml:"show_details" yaml:"show_details" json:"show_details"`

	// Path writes the report to a file instead of stdout
	Path string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// PerformanceConfig holds concurrency and time limits
type PerformanceConfig struct {
	// Workers bounds parallel hashing and pooling, 0 uses every CPU
	Workers int `mapstructure:"workers" toml:"workers" yaml:"workers" json:"workers"`

	// TimeoutSeconds aborts the run after this many seconds, 0 disables
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Paths:          []string{},
			Delimiter:      domain.DefaultDelimiter,
			HasHeader:      false,
			LabelColumn:    true,
			Dim:            0,
			LabelSeparator: domain.DefaultLabelSeparator,
		},
		LSH: LSHConfig{
			Rows:        domain.DefaultRows,
			Bands:       domain.DefaultBands,
			Seed:        domain.DefaultSeed,
			Family:      string(domain.HashFamilyHyperplane),
			BucketWidth: domain.DefaultBucketWidth,
			Center:      true,
		},
		Merge: MergeConfig{
			ExpectedClusters: domain.DefaultExpectedClusters,
			MeanPolicy:       string(domain.MeanPolicySnapshot),
			AssignUntouched:  false,
		},
		Output: OutputConfig{
			Format:      string(domain.OutputFormatText),
			ShowDetails: false,
		},
		Performance: PerformanceConfig{
			Workers:        0,
			TimeoutSeconds: 0,
		},
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len([]rune(c.Input.Delimiter)) != 1 {
		return domain.NewConfigurationError("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if c.Input.Dim < 0 {
		return domain.NewConfigurationError("input.dim must be >= 0, got %d", c.Input.Dim)
	}

	if c.LSH.Rows <= 0 {
		return domain.NewConfigurationError("lsh.rows must be > 0, got %d", c.LSH.Rows)
	}
	if c.LSH.Bands <= 0 {
		return domain.NewConfigurationError("lsh.bands must be > 0, got %d", c.LSH.Bands)
	}
	if c.LSH.Rows > domain.MaxHashFunctions/c.LSH.Bands {
		return domain.NewConfigurationError("lsh.rows * lsh.bands = %d exceeds the maximum of %d",
			c.LSH.Rows*c.LSH.Bands, domain.MaxHashFunctions)
	}
	family, err := domain.ParseHashFamily(c.LSH.Family)
	if err != nil {
		return err
	}
	if family == domain.HashFamilyPStable && c.LSH.BucketWidth <= 0 {
		return domain.NewConfigurationError("lsh.bucket_width must be > 0 for the pstable family, got %g", c.LSH.BucketWidth)
	}

	if c.Merge.ExpectedClusters <= 0 {
		return domain.NewConfigurationError("merge.expected_clusters must be > 0, got %d", c.Merge.ExpectedClusters)
	}
	if _, err := domain.ParseMeanPolicy(c.Merge.MeanPolicy); err != nil {
		return err
	}

	if _, err := domain.ParseOutputFormat(c.Output.Format); err != nil {
		return domain.NewConfigurationError("output.format must be one of: text, json, yaml, csv, got %q", c.Output.Format)
	}

	if c.Performance.Workers < 0 {
		return domain.NewConfigurationError("performance.workers must be >= 0, got %d", c.Performance.Workers)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return domain.NewConfigurationError("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// ToClusterRequest converts the configuration into a request with no output writer
func (c *Config) ToClusterRequest() *domain.ClusterRequest {
	paths := make([]string, len(c.Input.Paths))
	copy(paths, c.Input.Paths)

	return &domain.ClusterRequest{
		Paths:            paths,
		Delimiter:        c.Input.Delimiter,
		HasHeader:        c.Input.HasHeader,
		LabelColumn:      c.Input.LabelColumn,
		Dim:              c.Input.Dim,
		LabelSeparator:   c.Input.LabelSeparator,
		Rows:             c.LSH.Rows,
		Bands:            c.LSH.Bands,
		Seed:             c.LSH.Seed,
		Family:           domain.HashFamily(c.LSH.Family),
		BucketWidth:      c.LSH.BucketWidth,
		Center:           c.LSH.Center,
		ExpectedClusters: c.Merge.ExpectedClusters,
		MeanPolicy:       domain.MeanPolicy(c.Merge.MeanPolicy),
		AssignUntouched:  c.Merge.AssignUntouched,
		Workers:          c.Performance.Workers,
		Timeout:          time.Duration(c.Performance.TimeoutSeconds) * time.Second,
		OutputFormat:     domain.OutputFormat(c.Output.Format),
		OutputPath:       c.Output.Path,
		ShowDetails:      c.Output.ShowDetails,
	}
}

// String returns a short human readable summary
func (c *Config) String() string {
	return fmt.Sprintf("lsh(family=%s rows=%d bands=%d seed=%d) merge(k=%d policy=%s)",
		c.LSH.Family, c.LSH.Rows, c.LSH.Bands, c.LSH.Seed, c.Merge.ExpectedClusters, c.Merge.MeanPolicy)
}
