package lsh

import (
	"github.com/ludo-technologies/lshclust/domain"
)

// Coalesce merges raw groups that share at least one member until no two
// groups overlap. The result partitions the union of the input members and
// is ordered by smallest member with IDs renumbered from 0.
//
// Merging on shared membership chains transitively: one bridging sample is
// enough to join two otherwise dissimilar clusters. Callers that need
// tighter groups should raise rows per band rather than expect this step to
// split them again.
func Coalesce(raw []domain.SimilarityGroup) []domain.SimilarityGroup {
	ds := NewDisjointSet()
	for _, g := range raw {
		if len(g.Members) == 0 {
			continue
		}
		first := g.Members[0]
		ds.Add(first)
		for _, id := range g.Members[1:] {
			ds.Union(first, id)
		}
	}

	comps := ds.Components()
	groups := make([]domain.SimilarityGroup, len(comps))
	for i, members := range comps {
		groups[i] = domain.SimilarityGroup{ID: i, Members: members}
	}
	return groups
}
