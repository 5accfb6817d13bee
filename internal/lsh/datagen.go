package lsh

import (
	"fmt"
	"math/rand"

	"github.com/ludo-technologies/lshclust/domain"
)

// GeneratorConfig describes a synthetic dataset of Gaussian clusters
type GeneratorConfig struct {
	Clusters   int     // Number of clusters
	PerCluster int     // Samples per cluster
	Dim        int     // Vector dimension
	Spread     float64 // Standard deviation around each centre
	Separation float64 // Centres are drawn uniformly from [-Separation, Separation]
	Seed       int64
	Shuffle    bool // Interleave clusters instead of emitting them in blocks
}

// DefaultGeneratorConfig returns a small well separated configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Clusters:   3,
		PerCluster: 20,
		Dim:        2,
		Spread:     1.0,
		Separation: 50.0,
		Seed:       domain.DefaultSeed,
	}
}

// Validate checks the generator configuration
func (c GeneratorConfig) Validate() error {
	if c.Clusters <= 0 {
		return domain.NewConfigurationError("clusters must be > 0, got %d", c.Clusters)
	}
	if c.PerCluster <= 0 {
		return domain.NewConfigurationError("samples per cluster must be > 0, got %d", c.PerCluster)
	}
	if c.Dim <= 0 {
		return domain.NewConfigurationError("dim must be > 0, got %d", c.Dim)
	}
	if c.Spread < 0 {
		return domain.NewConfigurationError("spread must be >= 0, got %g", c.Spread)
	}
	if c.Separation < 0 {
		return domain.NewConfigurationError("separation must be >= 0, got %g", c.Separation)
	}
	return nil
}

// GenerateDataset draws Gaussian clusters labelled c<k>_<i>
func GenerateDataset(cfg GeneratorConfig) (*domain.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	centres := make([][]float64, cfg.Clusters)
	for k := range centres {
		centres[k] = make([]float64, cfg.Dim)
		for d := range centres[k] {
			centres[k][d] = (rng.Float64()*2 - 1) * cfg.Separation
		}
	}

	type sample struct {
		cluster, index int
	}
	order := make([]sample, 0, cfg.Clusters*cfg.PerCluster)
	for k := 0; k < cfg.Clusters; k++ {
		for i := 0; i < cfg.PerCluster; i++ {
			order = append(order, sample{k, i})
		}
	}
	if cfg.Shuffle {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	ds := &domain.Dataset{
		Dim:    cfg.Dim,
		Points: make([]domain.DataPoint, len(order)),
	}
	for id, s := range order {
		v := make([]float64, cfg.Dim)
		for d := range v {
			v[d] = centres[s.cluster][d] + rng.NormFloat64()*cfg.Spread
		}
		ds.Points[id] = domain.DataPoint{
			ID:     id,
			Label:  fmt.Sprintf("c%d_%d", s.cluster, s.index),
			Vector: v,
		}
	}
	return ds, nil
}
