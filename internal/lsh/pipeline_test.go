package lsh

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/lshclust/domain"
)

func sixPointPipeline(k int) *Pipeline {
	return NewPipeline(PipelineConfig{
		Hasher:           singleBandConfig(2),
		ExpectedClusters: k,
		Merge:            MergeOptions{Policy: domain.MeanPolicySnapshot},
		LabelSeparator:   "_",
	}).WithHashFunctions([]HashFunction{roundFirstCoordinate})
}

func TestPipeline_SixPointsTargetMatchesGroups(t *testing.T) {
	result, err := sixPointPipeline(3).Run(context.Background(), sixPoints())
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}}, members(result.Raw))
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}}, members(result.Coalesced))
	assert.Equal(t, members(result.Coalesced), members(result.Clusters()))
	assert.Empty(t, result.Merge.Pooled)
	assert.Equal(t, 3, result.Quality.NumClusters)
}

func TestPipeline_SixPointsMergeToTwo(t *testing.T) {
	result, err := sixPointPipeline(2).Run(context.Background(), sixPoints())
	require.NoError(t, err)

	assert.Len(t, result.Raw, 3)
	assert.Equal(t, [][]int{{0, 1}, {2, 3, 4, 5}}, members(result.Clusters()))
	assert.Equal(t, []int{4, 5}, result.Merge.Pooled)
	assert.Equal(t, 6, result.Quality.CoveredSamples)
}

func TestPipeline_TooManyClusters(t *testing.T) {
	_, err := sixPointPipeline(4).Run(context.Background(), sixPoints())
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestPipeline_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		dim  int
	}{
		{"inferred dim", 0},
		{"explicit dim", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultHasherConfig(tt.dim)
			p := NewPipeline(PipelineConfig{Hasher: cfg, ExpectedClusters: 1})

			tables, err := p.Hash(context.Background(), &domain.Dataset{Dim: tt.dim})
			require.NoError(t, err)
			assert.Empty(t, NeighborhoodGroups(tables))

			_, err = p.Run(context.Background(), &domain.Dataset{Dim: tt.dim})
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestPipeline_ValidatesBeforeHashing(t *testing.T) {
	var hashed bool
	p := NewPipeline(PipelineConfig{Hasher: singleBandConfig(2), ExpectedClusters: 0}).
		WithHashFunctions([]HashFunction{HashFunc(func([]float64) int64 { hashed = true; return 0 })})

	_, err := p.Run(context.Background(), sixPoints())
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
	assert.False(t, hashed)
}

func TestPipeline_GeneratedClusters(t *testing.T) {
	ds, err := GenerateDataset(GeneratorConfig{Clusters: 3, PerCluster: 30, Dim: 2, Spread: 0.1, Separation: 50, Seed: 5})
	require.NoError(t, err)

	req := domain.DefaultClusterRequest()
	req.Paths = []string{"generated"}
	req.Family = domain.HashFamilyPStable
	req.Rows = 4
	req.Bands = 10
	req.ExpectedClusters = 3
	req.AssignUntouched = true
	req.Seed = 17

	run := func() *Result {
		result, err := NewPipeline(PipelineConfigFromRequest(req, ds.Dim)).Run(context.Background(), ds)
		require.NoError(t, err)
		return result
	}

	first := run()
	require.Len(t, first.Clusters(), 3)
	assert.Equal(t, ds.Len(), first.Quality.CoveredSamples)
	assert.Equal(t, members(first.Clusters()), members(run().Clusters()))

	var bands atomic.Int32
	_, err = NewPipeline(PipelineConfigFromRequest(req, ds.Dim)).
		OnBandHashed(func(int) { bands.Add(1) }).
		Hash(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, int32(10), bands.Load())
}

func TestPipelineConfigFromRequest(t *testing.T) {
	req := domain.DefaultClusterRequest()
	req.Workers = 4
	req.MeanPolicy = domain.MeanPolicyIncremental

	cfg := PipelineConfigFromRequest(req, 7)
	assert.Equal(t, 7, cfg.Hasher.Dim)
	assert.Equal(t, domain.DefaultRows, cfg.Hasher.Rows)
	assert.Equal(t, domain.DefaultBands, cfg.Hasher.Bands)
	assert.Equal(t, 4, cfg.Hasher.Workers)
	assert.Equal(t, domain.MeanPolicyIncremental, cfg.Merge.Policy)
	assert.Equal(t, domain.DefaultExpectedClusters, cfg.ExpectedClusters)

	req.Dim = 3
	assert.Equal(t, 3, PipelineConfigFromRequest(req, 7).Hasher.Dim)
}
