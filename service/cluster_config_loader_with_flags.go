package service

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/config"
)

// ClusterConfigurationLoaderWithFlags wraps configuration loading with explicit flag tracking
type ClusterConfigurationLoaderWithFlags struct {
	loader      *ClusterConfigurationLoader
	flagTracker *config.FlagTracker
}

// NewClusterConfigurationLoaderWithFlags creates a loader that only lets explicitly set flags override the file
func NewClusterConfigurationLoaderWithFlags(logger *zap.Logger, explicitFlags map[string]bool) *ClusterConfigurationLoaderWithFlags {
	return &ClusterConfigurationLoaderWithFlags{
		loader:      NewClusterConfigurationLoader(logger),
		flagTracker: config.NewFlagTrackerWithFlags(explicitFlags),
	}
}

// LoadClusterConfig loads configuration from configPath or by discovery from targetPath
func (cl *ClusterConfigurationLoaderWithFlags) LoadClusterConfig(configPath, targetPath string) (*domain.ClusterRequest, error) {
	return cl.loader.LoadClusterConfig(configPath, targetPath)
}

// MergeConfig overlays CLI values onto base, respecting explicit flags
func (cl *ClusterConfigurationLoaderWithFlags) MergeConfig(base, override *domain.ClusterRequest) *domain.ClusterRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	return mergeClusterRequest(cl.flagTracker, base, override)
}

// mergeClusterRequest applies each override field whose flag was set
func mergeClusterRequest(ft *config.FlagTracker, base, override *domain.ClusterRequest) *domain.ClusterRequest {
	merged := *base

	// Command arguments replace input.paths; without arguments the file's list stands
	if len(override.Paths) > 0 {
		merged.Paths = append([]string(nil), override.Paths...)
	}

	merged.Delimiter = config.Merge(ft, merged.Delimiter, override.Delimiter, "delimiter")
	merged.HasHeader = config.Merge(ft, merged.HasHeader, override.HasHeader, "header")
	merged.LabelColumn = config.Merge(ft, merged.LabelColumn, override.LabelColumn, "label-column")
	merged.Dim = config.Merge(ft, merged.Dim, override.Dim, "dim")
	merged.LabelSeparator = config.Merge(ft, merged.LabelSeparator, override.LabelSeparator, "label-separator")

	merged.Rows = config.Merge(ft, merged.Rows, override.Rows, "rows")
	merged.Bands = config.Merge(ft, merged.Bands, override.Bands, "bands")
	merged.Seed = config.Merge(ft, merged.Seed, override.Seed, "seed")
	merged.Family = config.Merge(ft, merged.Family, override.Family, "family")
	merged.BucketWidth = config.Merge(ft, merged.BucketWidth, override.BucketWidth, "width")
	merged.Center = config.Merge(ft, merged.Center, override.Center, "center")

	merged.ExpectedClusters = config.Merge(ft, merged.ExpectedClusters, override.ExpectedClusters, "clusters")
	merged.MeanPolicy = config.Merge(ft, merged.MeanPolicy, override.MeanPolicy, "mean-policy")
	merged.AssignUntouched = config.Merge(ft, merged.AssignUntouched, override.AssignUntouched, "assign-untouched")

	merged.Workers = config.Merge(ft, merged.Workers, override.Workers, "workers")
	merged.Timeout = config.Merge(ft, merged.Timeout, override.Timeout, "timeout")

	merged.OutputFormat = config.Merge(ft, merged.OutputFormat, override.OutputFormat, "json", "yaml", "csv")
	merged.OutputPath = config.Merge(ft, merged.OutputPath, override.OutputPath, "output")
	merged.ShowDetails = config.Merge(ft, merged.ShowDetails, override.ShowDetails, "details")

	// Runtime values that never come from a file
	merged.OutputWriter = override.OutputWriter
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// nonZeroFlags marks every flag whose override field holds a non-zero value
func nonZeroFlags(req *domain.ClusterRequest) map[string]bool {
	return map[string]bool{
		"delimiter":        req.Delimiter != "",
		"header":           req.HasHeader,
		"label-column":     req.LabelColumn,
		"dim":              req.Dim != 0,
		"label-separator":  req.LabelSeparator != "",
		"rows":             req.Rows != 0,
		"bands":            req.Bands != 0,
		"seed":             req.Seed != 0,
		"family":           req.Family != "",
		"width":            req.BucketWidth != 0,
		"center":           req.Center,
		"clusters":         req.ExpectedClusters != 0,
		"mean-policy":      req.MeanPolicy != "",
		"assign-untouched": req.AssignUntouched,
		"workers":          req.Workers != 0,
		"timeout":          req.Timeout != 0,
		"json":             req.OutputFormat != "",
		"output":           req.OutputPath != "",
		"details":          req.ShowDetails,
	}
}

var _ domain.ClusterConfigurationLoader = (*ClusterConfigurationLoaderWithFlags)(nil)
