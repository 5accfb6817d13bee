package lsh

import (
	"math"

	"github.com/ludo-technologies/lshclust/domain"
)

func newDataset(vectors ...[]float64) *domain.Dataset {
	ds := &domain.Dataset{Points: make([]domain.DataPoint, len(vectors))}
	if len(vectors) > 0 {
		ds.Dim = len(vectors[0])
	}
	for i, v := range vectors {
		ds.Points[i] = domain.DataPoint{ID: i, Vector: v}
	}
	return ds
}

func withLabels(ds *domain.Dataset, labels ...string) *domain.Dataset {
	for i, l := range labels {
		ds.Points[i].Label = l
	}
	return ds
}

// sixPoints is three well separated pairs along the first axis
func sixPoints() *domain.Dataset {
	return newDataset(
		[]float64{0, 0}, []float64{0, 1},
		[]float64{10, 10}, []float64{10, 11},
		[]float64{20, 0}, []float64{20, 1},
	)
}

// roundFirstCoordinate buckets by rounding x to the nearest 10
var roundFirstCoordinate = HashFunc(func(v []float64) int64 {
	return int64(math.Round(v[0] / 10))
})

func singleBandConfig(dim int) HasherConfig {
	return HasherConfig{Rows: 1, Bands: 1, Dim: dim, Family: domain.HashFamilyHyperplane}
}

func group(id int, members ...int) domain.SimilarityGroup {
	return domain.SimilarityGroup{ID: id, Members: members}
}

func members(groups []domain.SimilarityGroup) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = g.Members
	}
	return out
}
