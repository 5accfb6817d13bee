package lsh

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/lshclust/domain"
)

// NeighborhoodGroups emits one raw SimilarityGroup per bucket holding two or
// more samples. Bands are scanned in ascending order and buckets by ascending
// key, so the output is deterministic. A sample may appear in several groups.
func NeighborhoodGroups(tables *BucketTables) []domain.SimilarityGroup {
	if tables == nil {
		return []domain.SimilarityGroup{}
	}

	groups := make([]domain.SimilarityGroup, 0)
	for band := 0; band < tables.Bands(); band++ {
		table := tables.Table(band)
		for _, key := range table.Keys() {
			ids := table.Bucket(key)
			if len(ids) < 2 {
				continue
			}
			members := make([]int, len(ids))
			copy(members, ids)
			groups = append(groups, domain.SimilarityGroup{
				ID:      len(groups),
				Members: members,
			})
		}
	}
	return groups
}

// TouchedSamples returns the sorted IDs that appear in at least one group
func TouchedSamples(groups []domain.SimilarityGroup) []int {
	seen := make(map[int]bool)
	for _, g := range groups {
		for _, id := range g.Members {
			seen[id] = true
		}
	}
	return sortedKeys(seen)
}

// SortByDistance orders ids in place by Euclidean distance to query.
// Equal distances keep ascending ID order.
func SortByDistance(ids []int, query []float64, dataset *domain.Dataset) {
	dist := make(map[int]float64, len(ids))
	for _, id := range ids {
		dist[id] = floats.Distance(query, dataset.Vector(id), 2)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := dist[ids[i]], dist[ids[j]]
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})
}
