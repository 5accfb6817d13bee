package service

import (
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/config"
)

// ClusterConfigurationLoader implements the domain.ClusterConfigurationLoader interface
type ClusterConfigurationLoader struct {
	loader *config.Loader
	logger *zap.Logger
}

// NewClusterConfigurationLoader creates a new cluster configuration loader
func NewClusterConfigurationLoader(logger *zap.Logger) *ClusterConfigurationLoader {
	return &ClusterConfigurationLoader{
		loader: config.NewLoader(),
		logger: loggerOrNop(logger),
	}
}

// LoadClusterConfig loads configPath, or discovers a configuration file
// walking up from targetPath. Defaults and LSHCLUST_* variables fill the gaps.
func (c *ClusterConfigurationLoader) LoadClusterConfig(configPath, targetPath string) (*domain.ClusterRequest, error) {
	cfg, used, err := c.loader.Load(configPath, searchDir(targetPath))
	if err != nil {
		return nil, err
	}
	if used != "" {
		c.logger.Debug("loaded configuration", zap.String("path", used))
	} else {
		c.logger.Debug("no configuration file found, using defaults",
			zap.String("search_from", searchDir(targetPath)),
			zap.Strings("candidates", config.GetSupportedConfigFiles()))
	}
	return cfg.ToClusterRequest(), nil
}

// GetDefaultClusterConfig returns the built-in defaults as a request
func (c *ClusterConfigurationLoader) GetDefaultClusterConfig() *domain.ClusterRequest {
	return config.DefaultConfig().ToClusterRequest()
}

// MergeConfig lets every non-zero override value win. Use
// ClusterConfigurationLoaderWithFlags to merge only explicitly set flags.
func (c *ClusterConfigurationLoader) MergeConfig(base, override *domain.ClusterRequest) *domain.ClusterRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	return mergeClusterRequest(config.NewFlagTrackerWithFlags(nonZeroFlags(override)), base, override)
}

// searchDir returns the directory to start configuration discovery from.
// Glob patterns are reduced to their static prefix.
func searchDir(target string) string {
	if target == "" {
		return "."
	}
	if hasGlobMeta(target) {
		base, _ := doublestar.SplitPattern(target)
		return base
	}
	return target
}

var _ domain.ClusterConfigurationLoader = (*ClusterConfigurationLoader)(nil)
