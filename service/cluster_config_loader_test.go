package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/lshclust/domain"
)

func TestClusterConfigurationLoader_DiscoversFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lshclust.toml"), []byte(`
[lsh]
rows = 3
bands = 7
family = "pstable"

[merge]
expected_clusters = 5
`), 0o644))
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	loader := NewClusterConfigurationLoader(nil)
	req, err := loader.LoadClusterConfig("", filepath.Join(dataDir, "**", "*.csv"))
	require.NoError(t, err)

	assert.Equal(t, 3, req.Rows)
	assert.Equal(t, 7, req.Bands)
	assert.Equal(t, domain.HashFamilyPStable, req.Family)
	assert.Equal(t, 5, req.ExpectedClusters)
	assert.Equal(t, domain.DefaultSeed, req.Seed)
}

func TestClusterConfigurationLoader_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[lsh]\nrows = 0\n"), 0o644))

	_, err := NewClusterConfigurationLoader(nil).LoadClusterConfig(path, dir)
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestClusterConfigurationLoader_Defaults(t *testing.T) {
	req := NewClusterConfigurationLoader(nil).GetDefaultClusterConfig()
	assert.Equal(t, domain.DefaultRows, req.Rows)
	assert.Equal(t, domain.DefaultBands, req.Bands)
	assert.Equal(t, domain.MeanPolicySnapshot, req.MeanPolicy)
}

func TestClusterConfigurationLoaderWithFlags_MergeConfig(t *testing.T) {
	base := domain.DefaultClusterRequest()
	base.Rows = 3
	base.Bands = 7
	base.ExpectedClusters = 5
	base.Timeout = time.Minute

	override := domain.DefaultClusterRequest()
	override.Paths = []string{"a.csv"}
	override.Rows = 12
	override.Bands = 40
	override.OutputFormat = domain.OutputFormatJSON

	loader := NewClusterConfigurationLoaderWithFlags(nil, map[string]bool{
		"rows": true,
		"json": true,
	})
	merged := loader.MergeConfig(base, override)

	assert.Equal(t, []string{"a.csv"}, merged.Paths)
	assert.Equal(t, 12, merged.Rows)
	assert.Equal(t, 7, merged.Bands, "bands flag was not set")
	assert.Equal(t, 5, merged.ExpectedClusters)
	assert.Equal(t, time.Minute, merged.Timeout)
	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)

	assert.Equal(t, 3, base.Rows, "base must not be modified")
}

func TestClusterConfigurationLoaderWithFlags_PathsFromFile(t *testing.T) {
	base := domain.DefaultClusterRequest()
	base.Paths = []string{"data/**/*.csv"}

	loader := NewClusterConfigurationLoaderWithFlags(nil, map[string]bool{})

	merged := loader.MergeConfig(base, &domain.ClusterRequest{})
	assert.Equal(t, []string{"data/**/*.csv"}, merged.Paths)

	merged = loader.MergeConfig(base, &domain.ClusterRequest{Paths: []string{"b.csv"}})
	assert.Equal(t, []string{"b.csv"}, merged.Paths)
}

func TestClusterConfigurationLoader_MergeConfigNonZero(t *testing.T) {
	base := domain.DefaultClusterRequest()
	override := &domain.ClusterRequest{Bands: 50, Center: true}

	merged := NewClusterConfigurationLoader(nil).MergeConfig(base, override)
	assert.Equal(t, 50, merged.Bands)
	assert.Equal(t, base.Rows, merged.Rows)
	assert.Equal(t, base.Family, merged.Family)
}

func TestClusterConfigurationLoader_MergeNil(t *testing.T) {
	loader := NewClusterConfigurationLoaderWithFlags(nil, nil)
	base := domain.DefaultClusterRequest()

	assert.Same(t, base, loader.MergeConfig(base, nil))
	assert.Same(t, base, loader.MergeConfig(nil, base))
}

func TestSearchDir(t *testing.T) {
	assert.Equal(t, ".", searchDir(""))
	assert.Equal(t, "data", searchDir("data/**/*.csv"))
	assert.Equal(t, "points.csv", searchDir("points.csv"))
}
