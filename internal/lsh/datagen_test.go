package lsh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/lshclust/domain"
)

func TestGenerateDataset(t *testing.T) {
	cfg := GeneratorConfig{Clusters: 3, PerCluster: 4, Dim: 5, Spread: 0.5, Separation: 10, Seed: 99}
	ds, err := GenerateDataset(cfg)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Dim)
	require.Equal(t, 12, ds.Len())
	for i, p := range ds.Points {
		assert.Equal(t, i, p.ID)
		assert.Len(t, p.Vector, 5)
		assert.Equal(t, fmt.Sprintf("c%d_%d", i/4, i%4), p.Label)
	}
}

func TestGenerateDataset_Deterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Shuffle = true

	a, err := GenerateDataset(cfg)
	require.NoError(t, err)
	b, err := GenerateDataset(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg.Seed++
	c, err := GenerateDataset(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Points[0].Vector, c.Points[0].Vector)
}

func TestGenerateDataset_ZeroSpread(t *testing.T) {
	ds, err := GenerateDataset(GeneratorConfig{Clusters: 2, PerCluster: 3, Dim: 2, Spread: 0, Separation: 5, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, ds.Points[0].Vector, ds.Points[1].Vector)
	assert.Equal(t, ds.Points[0].Vector, ds.Points[2].Vector)
	assert.NotEqual(t, ds.Points[0].Vector, ds.Points[3].Vector)
}

func TestGeneratorConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GeneratorConfig)
	}{
		{"clusters", func(c *GeneratorConfig) { c.Clusters = 0 }},
		{"per cluster", func(c *GeneratorConfig) { c.PerCluster = -1 }},
		{"dim", func(c *GeneratorConfig) { c.Dim = 0 }},
		{"spread", func(c *GeneratorConfig) { c.Spread = -1 }},
		{"separation", func(c *GeneratorConfig) { c.Separation = -0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig()
			tt.mutate(&cfg)
			_, err := GenerateDataset(cfg)
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}
