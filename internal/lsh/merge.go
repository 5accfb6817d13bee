package lsh

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/lshclust/domain"
)

// MergeOptions configures merging to a target cluster count
type MergeOptions struct {
	Policy          domain.MeanPolicy
	AssignUntouched bool // pool samples that fell in no group
	Workers         int  // parallel nearest-mean queries under the snapshot policy
}

// MergeResult is the outcome of MergeToTarget
type MergeResult struct {
	Groups    []domain.SimilarityGroup
	Pooled    []int // IDs reassigned to a retained group, ascending
	Untouched int   // samples in no input group that were pooled
}

// MergeToTarget reduces coalesced groups to exactly k groups.
//
// Groups are ordered by size ascending, the higher index first on ties, and
// the first len(groups)-k are dissolved into an overflow pool. Each pooled
// sample, in ascending ID order, joins the retained group whose mean is
// nearest in L2 distance; ties go to the lowest retained index. Retained
// groups keep their relative order and are renumbered from 0.
//
// The input slice and its member slices are never modified.
func MergeToTarget(ctx context.Context, groups []domain.SimilarityGroup, dataset *domain.Dataset, k int, opts MergeOptions) (*MergeResult, error) {
	if k <= 0 {
		return nil, domain.NewConfigurationError("expected number of clusters must be > 0, got %d", k)
	}
	if k > len(groups) {
		return nil, domain.NewConfigurationError("expected number of clusters K=%d exceeds the %d coalesced groups",
			k, len(groups))
	}
	policy, err := domain.ParseMeanPolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		for _, id := range g.Members {
			if id < 0 || id >= dataset.Len() {
				return nil, domain.NewAnalysisError("group member outside the dataset", nil)
			}
		}
	}

	var untouched []int
	if opts.AssignUntouched {
		untouched = untouchedSamples(groups, dataset.Len())
	}

	if k == len(groups) && len(untouched) == 0 {
		return &MergeResult{Groups: copyGroups(groups), Pooled: []int{}}, nil
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := len(groups[order[a]].Members), len(groups[order[b]].Members)
		if sa != sb {
			return sa < sb
		}
		return order[a] > order[b]
	})

	dissolved := make(map[int]bool, len(groups)-k)
	for _, idx := range order[:len(groups)-k] {
		dissolved[idx] = true
	}

	retained := make([]domain.SimilarityGroup, 0, k)
	poolSet := make(map[int]bool)
	for i, g := range groups {
		if dissolved[i] {
			for _, id := range g.Members {
				poolSet[id] = true
			}
			continue
		}
		members := make([]int, len(g.Members))
		copy(members, g.Members)
		retained = append(retained, domain.SimilarityGroup{ID: len(retained), Members: members})
	}
	for _, id := range untouched {
		poolSet[id] = true
	}
	pool := sortedKeys(poolSet)

	means := make([][]float64, len(retained))
	counts := make([]int, len(retained))
	for i, g := range retained {
		means[i] = groupMean(g.Members, dataset)
		counts[i] = len(g.Members)
	}

	var assignment []int
	switch policy {
	case domain.MeanPolicyIncremental:
		assignment, err = assignIncremental(ctx, pool, dataset, means, counts)
	default:
		assignment, err = assignSnapshot(ctx, pool, dataset, means, opts.Workers)
	}
	if err != nil {
		return nil, err
	}

	for i, id := range pool {
		g := assignment[i]
		retained[g].Members = append(retained[g].Members, id)
	}
	for i := range retained {
		sort.Ints(retained[i].Members)
	}

	return &MergeResult{
		Groups:    retained,
		Pooled:    pool,
		Untouched: len(untouched),
	}, nil
}

// assignSnapshot assigns against means fixed before pooling. Every query is
// independent so the pool is split across workers.
func assignSnapshot(ctx context.Context, pool []int, dataset *domain.Dataset, means [][]float64, workers int) ([]int, error) {
	assignment := make([]int, len(pool))
	if len(pool) == 0 {
		return assignment, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (len(pool) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(pool); start += chunk {
		end := min(start+chunk, len(pool))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				assignment[i], _ = NearestMean(dataset.Vector(pool[i]), means)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assignment, nil
}

// assignIncremental folds each assigned sample into its group's mean before the next query
func assignIncremental(ctx context.Context, pool []int, dataset *domain.Dataset, means [][]float64, counts []int) ([]int, error) {
	assignment := make([]int, len(pool))
	for i, id := range pool {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		v := dataset.Vector(id)
		g, _ := NearestMean(v, means)
		assignment[i] = g

		// mean = mean*(n-1)/n + v/n, never forming v-mean
		counts[g]++
		n := float64(counts[g])
		floats.Scale((n-1)/n, means[g])
		floats.AddScaled(means[g], 1/n, v)
	}
	return assignment, nil
}

// NearestMean returns the index of the mean closest to v in L2 distance and
// that distance. Ties resolve to the lowest index. When no distance is
// finite, or means is empty, the index is 0 and the distance +Inf.
func NearestMean(v []float64, means [][]float64) (int, float64) {
	best := 0
	bestDist := math.Inf(1)
	for i, m := range means {
		d := floats.Distance(v, m, 2)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// groupMean returns the componentwise mean of the member vectors. Each
// vector is scaled before summing so finite inputs give a finite mean.
func groupMean(members []int, dataset *domain.Dataset) []float64 {
	mean := make([]float64, dataset.Dim)
	if len(members) == 0 {
		return mean
	}
	w := 1 / float64(len(members))
	for _, id := range members {
		floats.AddScaled(mean, w, dataset.Vector(id))
	}
	return mean
}

func untouchedSamples(groups []domain.SimilarityGroup, n int) []int {
	touched := TouchedSamples(groups)
	out := make([]int, 0, n-len(touched))
	next := 0
	for id := 0; id < n; id++ {
		if next < len(touched) && touched[next] == id {
			next++
			continue
		}
		out = append(out, id)
	}
	return out
}

func copyGroups(groups []domain.SimilarityGroup) []domain.SimilarityGroup {
	out := make([]domain.SimilarityGroup, len(groups))
	for i, g := range groups {
		members := make([]int, len(g.Members))
		copy(members, g.Members)
		out[i] = domain.SimilarityGroup{ID: i, Members: members}
	}
	return out
}
