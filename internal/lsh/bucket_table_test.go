package lsh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashSixPoints(t *testing.T) *BucketTables {
	t.Helper()
	h, err := NewBandHasherWithFunctions(singleBandConfig(2), []HashFunction{roundFirstCoordinate})
	require.NoError(t, err)
	tables, err := h.HashAll(context.Background(), sixPoints())
	require.NoError(t, err)
	return tables
}

func TestBucketTables_Stats(t *testing.T) {
	stats := hashSixPoints(t).Stats()

	assert.Equal(t, 1, stats.Bands)
	assert.Equal(t, 1, stats.Rows)
	assert.Equal(t, 3, stats.NumBuckets)
	assert.Equal(t, 3, stats.CollidingBuckets)
	assert.Equal(t, 2, stats.MinBucketSize)
	assert.Equal(t, 2, stats.MaxBucketSize)
	assert.InDelta(t, 2.0, stats.AvgBucketSize, 1e-9)
	assert.InDelta(t, 2.0, stats.MedianBucketSize, 1e-9)
}

func TestBucketTables_StatsMedianEven(t *testing.T) {
	fn := HashFunc(func(v []float64) int64 { return int64(v[0]) })
	h, err := NewBandHasherWithFunctions(singleBandConfig(1), []HashFunction{fn})
	require.NoError(t, err)

	// bucket sizes 1, 1, 2, 4
	ds := newDataset([]float64{0}, []float64{1}, []float64{2}, []float64{2},
		[]float64{3}, []float64{3}, []float64{3}, []float64{3})
	tables, err := h.HashAll(context.Background(), ds)
	require.NoError(t, err)

	stats := tables.Stats()
	assert.Equal(t, 4, stats.NumBuckets)
	assert.Equal(t, 2, stats.CollidingBuckets)
	assert.Equal(t, 1, stats.MinBucketSize)
	assert.Equal(t, 4, stats.MaxBucketSize)
	assert.InDelta(t, 2.0, stats.AvgBucketSize, 1e-9)
	assert.InDelta(t, 1.5, stats.MedianBucketSize, 1e-9)
}

func TestBucketTables_StatsEmpty(t *testing.T) {
	tables := newBucketTables(3, 2, 0)
	stats := tables.Stats()
	assert.Equal(t, 3, stats.Bands)
	assert.Equal(t, 0, stats.NumBuckets)
	assert.Zero(t, stats.AvgBucketSize)
}

func TestBucketTables_Candidates(t *testing.T) {
	// band 0 groups by x, band 1 groups by y
	fns := []HashFunction{
		HashFunc(func(v []float64) int64 { return int64(v[0]) }),
		HashFunc(func(v []float64) int64 { return int64(v[1]) }),
	}
	h, err := NewBandHasherWithFunctions(HasherConfig{Rows: 1, Bands: 2, Dim: 2}, fns)
	require.NoError(t, err)

	ds := newDataset(
		[]float64{0, 0}, // 0
		[]float64{0, 0}, // 1 shares both bands with 0
		[]float64{0, 5}, // 2 shares band 0 with 0
		[]float64{7, 0}, // 3 shares band 1 with 0
		[]float64{9, 9}, // 4 shares nothing
	)
	tables, err := h.HashAll(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, tables.Candidates(0, 1))
	assert.Equal(t, []int{1}, tables.Candidates(0, 2))
	assert.Equal(t, []int{1, 2, 3}, tables.Candidates(0, 0))
	assert.Empty(t, tables.Candidates(4, 1))
	assert.Empty(t, tables.Candidates(99, 1))
	assert.Empty(t, tables.Candidates(-1, 1))
}
