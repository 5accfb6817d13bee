package domain

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DataPoint is one immutable input sample
type DataPoint struct {
	ID     int       `json:"id" yaml:"id"`
	Label  string    `json:"label,omitempty" yaml:"label,omitempty"`
	Vector []float64 `json:"vector" yaml:"vector"`
}

// Dataset is the in-memory collection of loaded points.
// Points[i].ID == i for every dataset produced by a DataLoader.
type Dataset struct {
	Dim     int         `json:"dim" yaml:"dim"`
	Points  []DataPoint `json:"points" yaml:"points"`
	Sources []string    `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Len returns the number of points
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Points)
}

// HasLabels reports whether any point carries a label
func (d *Dataset) HasLabels() bool {
	if d == nil {
		return false
	}
	for _, p := range d.Points {
		if p.Label != "" {
			return true
		}
	}
	return false
}

// Vector returns the vector of the point with the given ID
func (d *Dataset) Vector(id int) []float64 {
	return d.Points[id].Vector
}

// SimilarityGroup is a set of sample IDs believed to be near-duplicates
type SimilarityGroup struct {
	ID      int   `json:"id" yaml:"id"`
	Members []int `json:"members" yaml:"members"`
}

// Size returns the number of members
func (g *SimilarityGroup) Size() int {
	return len(g.Members)
}

// String returns string representation of SimilarityGroup
func (g *SimilarityGroup) String() string {
	return fmt.Sprintf("SimilarityGroup{ID: %d, Size: %d}", g.ID, len(g.Members))
}

// BucketStats summarises the bucket tables built during hashing
type BucketStats struct {
	Bands            int     `json:"bands" yaml:"bands"`
	Rows             int     `json:"rows" yaml:"rows"`
	NumBuckets       int     `json:"num_buckets" yaml:"num_buckets"`
	CollidingBuckets int     `json:"colliding_buckets" yaml:"colliding_buckets"`
	MinBucketSize    int     `json:"min_bucket_size" yaml:"min_bucket_size"`
	MaxBucketSize    int     `json:"max_bucket_size" yaml:"max_bucket_size"`
	AvgBucketSize    float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`
	MedianBucketSize float64 `json:"median_bucket_size" yaml:"median_bucket_size"`
}

// ClusterQuality holds per-cluster quality statistics
type ClusterQuality struct {
	GroupID       int       `json:"group_id" yaml:"group_id"`
	Size          int       `json:"size" yaml:"size"`
	Mean          []float64 `json:"mean" yaml:"mean"`
	MeanDistance  float64   `json:"mean_distance" yaml:"mean_distance"`
	MaxDistance   float64   `json:"max_distance" yaml:"max_distance"`
	StdDistance   float64   `json:"std_distance" yaml:"std_distance"`
	MajorityLabel string    `json:"majority_label,omitempty" yaml:"majority_label,omitempty"`
	Purity        float64   `json:"purity,omitempty" yaml:"purity,omitempty"`
}

// QualityReport summarises the final clusters
type QualityReport struct {
	NumClusters       int              `json:"num_clusters" yaml:"num_clusters"`
	TotalSamples      int              `json:"total_samples" yaml:"total_samples"`
	CoveredSamples    int              `json:"covered_samples" yaml:"covered_samples"`
	Coverage          float64          `json:"coverage" yaml:"coverage"`
	MeanIntraDistance float64          `json:"mean_intra_distance" yaml:"mean_intra_distance"`
	HasLabels         bool             `json:"has_labels" yaml:"has_labels"`
	Purity            float64          `json:"purity,omitempty" yaml:"purity,omitempty"`
	Clusters          []ClusterQuality `json:"clusters" yaml:"clusters"`
}

// ClusterMember is one sample of a final cluster
type ClusterMember struct {
	SampleID int    `json:"sample_id" yaml:"sample_id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Cluster is a finalized, read-only cluster assignment
type Cluster struct {
	ID      int             `json:"id" yaml:"id"`
	Size    int             `json:"size" yaml:"size"`
	Members []ClusterMember `json:"members" yaml:"members"`
}

// ClusterStatistics describes how the pipeline stages shaped the result
type ClusterStatistics struct {
	Samples          int         `json:"samples" yaml:"samples"`
	Dim              int         `json:"dim" yaml:"dim"`
	RawGroups        int         `json:"raw_groups" yaml:"raw_groups"`
	CoalescedGroups  int         `json:"coalesced_groups" yaml:"coalesced_groups"`
	FinalClusters    int         `json:"final_clusters" yaml:"final_clusters"`
	PooledSamples    int         `json:"pooled_samples" yaml:"pooled_samples"`
	UntouchedSamples int         `json:"untouched_samples" yaml:"untouched_samples"`
	Buckets          BucketStats `json:"buckets" yaml:"buckets"`
}

// ClusterRequest represents a request for LSH clustering
type ClusterRequest struct {
	// Input parameters
	Paths          []string `json:"paths" yaml:"paths"`
	Delimiter      string   `json:"delimiter" yaml:"delimiter"`
	HasHeader      bool     `json:"has_header" yaml:"has_header"`
	LabelColumn    bool     `json:"label_column" yaml:"label_column"`
	Dim            int      `json:"dim" yaml:"dim"`
	LabelSeparator string   `json:"label_separator" yaml:"label_separator"`

	// Hashing configuration
	Rows        int        `json:"rows" yaml:"rows"`
	Bands       int        `json:"bands" yaml:"bands"`
	Seed        int64      `json:"seed" yaml:"seed"`
	Family      HashFamily `json:"family" yaml:"family"`
	BucketWidth float64    `json:"bucket_width" yaml:"bucket_width"`
	Center      bool       `json:"center" yaml:"center"`

	// Merge configuration
	ExpectedClusters int        `json:"expected_clusters" yaml:"expected_clusters"`
	MeanPolicy       MeanPolicy `json:"mean_policy" yaml:"mean_policy"`
	AssignUntouched  bool       `json:"assign_untouched" yaml:"assign_untouched"`

	// Performance
	Workers int           `json:"workers" yaml:"workers"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Output configuration
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`
	OutputWriter io.Writer    `json:"-" yaml:"-"`
	OutputPath   string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	ShowDetails  bool         `json:"show_details" yaml:"show_details"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
}

// Validate checks request parameters before any data is read or hashed
func (req *ClusterRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("no input paths specified")
	}
	if req.Dim < 0 {
		return NewConfigurationError("dim must be >= 0 (0 infers it from the data), got %d", req.Dim)
	}
	if req.Rows <= 0 {
		return NewConfigurationError("rows per band must be > 0, got %d", req.Rows)
	}
	if req.Bands <= 0 {
		return NewConfigurationError("number of bands must be > 0, got %d", req.Bands)
	}
	if req.Rows > MaxHashFunctions/req.Bands {
		return NewConfigurationError("rows=%d * bands=%d exceeds the maximum of %d hash functions",
			req.Rows, req.Bands, MaxHashFunctions)
	}
	if _, err := ParseHashFamily(string(req.Family)); err != nil {
		return err
	}
	if req.Family == HashFamilyPStable && req.BucketWidth <= 0 {
		return NewConfigurationError("bucket width must be > 0 for the pstable family, got %g", req.BucketWidth)
	}
	if req.ExpectedClusters <= 0 {
		return NewConfigurationError("expected number of clusters must be > 0, got %d", req.ExpectedClusters)
	}
	if _, err := ParseMeanPolicy(string(req.MeanPolicy)); err != nil {
		return err
	}
	if req.Workers < 0 {
		return NewConfigurationError("workers must be >= 0, got %d", req.Workers)
	}
	if _, err := ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}
	return nil
}

// HasValidOutputWriter checks if the request has a valid output destination
func (req *ClusterRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil || req.OutputPath != ""
}

// DefaultClusterRequest returns a default cluster request
func DefaultClusterRequest() *ClusterRequest {
	return &ClusterRequest{
		Delimiter:        DefaultDelimiter,
		HasHeader:        false,
		LabelColumn:      true,
		LabelSeparator:   DefaultLabelSeparator,
		Rows:             DefaultRows,
		Bands:            DefaultBands,
		Seed:             DefaultSeed,
		Family:           HashFamilyHyperplane,
		BucketWidth:      DefaultBucketWidth,
		Center:           true,
		ExpectedClusters: DefaultExpectedClusters,
		MeanPolicy:       MeanPolicySnapshot,
		OutputFormat:     OutputFormatText,
	}
}

// ClusterResponse represents the response from clustering
type ClusterResponse struct {
	Clusters   []*Cluster         `json:"clusters" yaml:"clusters"`
	Statistics *ClusterStatistics `json:"statistics" yaml:"statistics"`
	Quality    *QualityReport     `json:"quality,omitempty" yaml:"quality,omitempty"`

	// Metadata
	Request  *ClusterRequest `json:"request,omitempty" yaml:"request,omitempty"`
	Duration int64           `json:"duration_ms" yaml:"duration_ms"`
	Success  bool            `json:"success" yaml:"success"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// NeighborsResponse lists the LSH candidates of one sample
type NeighborsResponse struct {
	SampleID  int             `json:"sample_id" yaml:"sample_id"`
	Label     string          `json:"label,omitempty" yaml:"label,omitempty"`
	MinBands  int             `json:"min_bands" yaml:"min_bands"`
	Neighbors []ClusterMember `json:"neighbors" yaml:"neighbors"`
}

// LoadOptions controls how delimited data files are parsed
type LoadOptions struct {
	Delimiter   string
	HasHeader   bool
	LabelColumn bool
	ExpectedDim int
	Comment     string
}

// LoadOptionsFromRequest derives loader options from a request
func LoadOptionsFromRequest(req *ClusterRequest) LoadOptions {
	return LoadOptions{
		Delimiter:   req.Delimiter,
		HasHeader:   req.HasHeader,
		LabelColumn: req.LabelColumn,
		ExpectedDim: req.Dim,
		Comment:     DefaultCommentChar,
	}
}

// DataLoader reads delimited numeric data into a Dataset
type DataLoader interface {
	// ResolvePaths expands glob patterns into concrete file paths
	ResolvePaths(patterns []string) ([]string, error)

	// Load reads every file into one dataset with consecutive sample IDs
	Load(ctx context.Context, paths []string, opts LoadOptions) (*Dataset, error)
}

// ClusterService defines the interface for the clustering pipeline
type ClusterService interface {
	// Cluster runs hashing, candidate grouping, merging and evaluation
	Cluster(ctx context.Context, dataset *Dataset, req *ClusterRequest) (*ClusterResponse, error)

	// Neighbors returns the samples sharing at least minBands buckets with sampleID
	Neighbors(ctx context.Context, dataset *Dataset, req *ClusterRequest, sampleID, minBands int) (*NeighborsResponse, error)
}

// ClusterOutputFormatter defines the interface for formatting cluster results
type ClusterOutputFormatter interface {
	// FormatClusterResponse formats a cluster response
	FormatClusterResponse(response *ClusterResponse, format OutputFormat, writer io.Writer) error

	// FormatNeighbors formats a neighbour query
	FormatNeighbors(response *NeighborsResponse, format OutputFormat, writer io.Writer) error
}

// ClusterConfigurationLoader defines the interface for loading cluster configuration
type ClusterConfigurationLoader interface {
	// LoadClusterConfig loads configuration from configPath, or discovers one from targetPath
	LoadClusterConfig(configPath, targetPath string) (*ClusterRequest, error)

	// MergeConfig overlays explicitly set CLI values onto the base configuration
	MergeConfig(base, override *ClusterRequest) *ClusterRequest
}
