package lsh

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/lshclust/domain"
)

func sixPointGroups() []domain.SimilarityGroup {
	return []domain.SimilarityGroup{group(0, 0, 1), group(1, 2, 3), group(2, 4, 5)}
}

func TestMergeToTarget_InvalidK(t *testing.T) {
	tests := []struct {
		name   string
		groups []domain.SimilarityGroup
		k      int
	}{
		{"zero", sixPointGroups(), 0},
		{"negative", sixPointGroups(), -1},
		{"exceeds groups", sixPointGroups(), 4},
		{"empty input", []domain.SimilarityGroup{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MergeToTarget(context.Background(), tt.groups, sixPoints(), tt.k, MergeOptions{})
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestMergeToTarget_UnknownPolicy(t *testing.T) {
	_, err := MergeToTarget(context.Background(), sixPointGroups(), sixPoints(), 2, MergeOptions{Policy: "lazy"})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestMergeToTarget_MemberOutsideDataset(t *testing.T) {
	groups := []domain.SimilarityGroup{group(0, 0, 1), group(1, 2, 42)}
	_, err := MergeToTarget(context.Background(), groups, sixPoints(), 1, MergeOptions{})
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeAnalysisError))
}

func TestMergeToTarget_CountEqualsK(t *testing.T) {
	groups := sixPointGroups()
	result, err := MergeToTarget(context.Background(), groups, sixPoints(), 3, MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, groups, result.Groups)
	assert.Empty(t, result.Pooled)
}

func TestMergeToTarget_SixPoints(t *testing.T) {
	for _, policy := range []domain.MeanPolicy{domain.MeanPolicySnapshot, domain.MeanPolicyIncremental} {
		t.Run(string(policy), func(t *testing.T) {
			result, err := MergeToTarget(context.Background(), sixPointGroups(), sixPoints(), 2, MergeOptions{Policy: policy})
			require.NoError(t, err)

			// the (20,*) pair loses the size tie and both members are nearer (10,*) than (0,*)
			assert.Equal(t, [][]int{{0, 1}, {2, 3, 4, 5}}, members(result.Groups))
			assert.Equal(t, []int{4, 5}, result.Pooled)
			assert.Equal(t, 0, result.Groups[0].ID)
			assert.Equal(t, 1, result.Groups[1].ID)
		})
	}
}

func TestMergeToTarget_DoesNotMutateInput(t *testing.T) {
	groups := sixPointGroups()
	_, err := MergeToTarget(context.Background(), groups, sixPoints(), 1, MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, sixPointGroups(), groups)
}

func TestMergeToTarget_PoolsSmallestFirst(t *testing.T) {
	ds := newDataset(
		[]float64{0}, []float64{0}, []float64{0}, // 0..2 large group
		[]float64{50}, []float64{50}, // 3,4
		[]float64{100}, []float64{100}, []float64{100}, // 5..7
		[]float64{49}, []float64{49}, // 8,9
	)
	groups := []domain.SimilarityGroup{
		group(0, 0, 1, 2),
		group(1, 3, 4),
		group(2, 5, 6, 7),
		group(3, 8, 9),
	}

	result, err := MergeToTarget(context.Background(), groups, ds, 3, MergeOptions{})
	require.NoError(t, err)

	// group 3 is pooled ahead of group 1 on the size tie
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 8, 9}, {5, 6, 7}}, members(result.Groups))
}

func TestMergeToTarget_TieGoesToLowestIndex(t *testing.T) {
	ds := newDataset(
		[]float64{-1, 0}, []float64{-1, 0},
		[]float64{1, 0}, []float64{1, 0},
		[]float64{0, 0},
	)
	groups := []domain.SimilarityGroup{group(0, 0, 1), group(1, 2, 3), group(2, 4)}

	result, err := MergeToTarget(context.Background(), groups, ds, 2, MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 4}, {2, 3}}, members(result.Groups))
}

func TestMergeToTarget_MeanPolicies(t *testing.T) {
	// Retained means sit at 0 and 10. Under snapshot, 4.5 stays nearer 0.
	// Under incremental, 6 is folded into the right mean first and pulls it to 8.67.
	ds := newDataset(
		[]float64{0, 0}, []float64{10, 0},
		[]float64{6, 0}, []float64{4.5, 0},
		[]float64{0, 0}, []float64{10, 0},
	)
	groups := []domain.SimilarityGroup{group(0, 0, 4), group(1, 1, 5), group(2, 2, 3)}

	snapshot, err := MergeToTarget(context.Background(), groups, ds, 2, MergeOptions{Policy: domain.MeanPolicySnapshot})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 3, 4}, {1, 2, 5}}, members(snapshot.Groups))

	incremental, err := MergeToTarget(context.Background(), groups, ds, 2, MergeOptions{Policy: domain.MeanPolicyIncremental})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 4}, {1, 2, 3, 5}}, members(incremental.Groups))
}

func TestMergeToTarget_NearestAssignment(t *testing.T) {
	ds, err := GenerateDataset(GeneratorConfig{Clusters: 6, PerCluster: 15, Dim: 4, Spread: 3, Separation: 20, Seed: 21, Shuffle: true})
	require.NoError(t, err)

	// chunk ids into groups of uneven size
	groups := make([]domain.SimilarityGroup, 0)
	sizes := []int{20, 3, 17, 2, 25, 4, 11, 8}
	next := 0
	for i, size := range sizes {
		ids := make([]int, size)
		for j := range ids {
			ids[j] = next
			next++
		}
		groups = append(groups, group(i, ids...))
	}

	k := 4
	result, err := MergeToTarget(context.Background(), groups, ds, k, MergeOptions{Policy: domain.MeanPolicySnapshot, Workers: 3})
	require.NoError(t, err)
	require.Len(t, result.Groups, k)

	// retained groups are the four largest, in original order
	retainedIdx := []int{0, 2, 4, 6}
	means := make([][]float64, k)
	for i, idx := range retainedIdx {
		means[i] = groupMean(groups[idx].Members, ds)
	}

	owner := make(map[int]int)
	for gi, g := range result.Groups {
		for _, id := range g.Members {
			owner[id] = gi
		}
	}
	assert.Len(t, owner, next, "every touched sample is assigned exactly once")

	for _, id := range result.Pooled {
		assigned := floats.Distance(ds.Vector(id), means[owner[id]], 2)
		for _, m := range means {
			assert.LessOrEqual(t, assigned, floats.Distance(ds.Vector(id), m, 2))
		}
	}
}

func TestMergeToTarget_AssignUntouched(t *testing.T) {
	ds := newDataset(
		[]float64{0, 0}, []float64{0, 1},
		[]float64{10, 10}, []float64{10, 11},
		[]float64{20, 0}, []float64{20, 1},
		[]float64{100, 0},
	)

	without, err := MergeToTarget(context.Background(), sixPointGroups(), ds, 3, MergeOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5}}, members(without.Groups))

	with, err := MergeToTarget(context.Background(), sixPointGroups(), ds, 3, MergeOptions{AssignUntouched: true})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4, 5, 6}}, members(with.Groups))
	assert.Equal(t, []int{6}, with.Pooled)
	assert.Equal(t, 1, with.Untouched)
}

func TestMergeToTarget_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MergeToTarget(ctx, sixPointGroups(), sixPoints(), 1, MergeOptions{Policy: domain.MeanPolicyIncremental})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNearestMean(t *testing.T) {
	means := [][]float64{{0, 0}, {3, 4}, {3, 4}}

	idx, dist := NearestMean([]float64{3, 4}, means)
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0, dist, 1e-12)

	idx, dist = NearestMean([]float64{0, 1}, means)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 1, dist, 1e-12)

	idx, dist = NearestMean([]float64{1}, nil)
	assert.Equal(t, 0, idx)
	assert.True(t, math.IsInf(dist, 1))

	idx, dist = NearestMean([]float64{0}, [][]float64{{math.Inf(1)}, {math.Inf(-1)}})
	assert.Equal(t, 0, idx)
	assert.True(t, math.IsInf(dist, 1))
}

func TestGroupMean_LargeFiniteValues(t *testing.T) {
	ds := newDataset([]float64{1e308, -1e308}, []float64{1e308, -1e308}, []float64{math.MaxFloat64, 0})

	mean := groupMean([]int{0, 1}, ds)
	assert.InDelta(t, 1e308, mean[0], 1e293)
	assert.InDelta(t, -1e308, mean[1], 1e293)

	mean = groupMean([]int{0, 1, 2}, ds)
	assert.False(t, math.IsInf(mean[0], 0))
}

func TestMergeToTarget_LargeFiniteValues(t *testing.T) {
	for _, policy := range []domain.MeanPolicy{domain.MeanPolicySnapshot, domain.MeanPolicyIncremental} {
		t.Run(string(policy), func(t *testing.T) {
			ds := newDataset(
				[]float64{1e308, 1e308}, []float64{1e308, 1e308},
				[]float64{0, 0}, []float64{0, 0},
			)
			groups := []domain.SimilarityGroup{group(0, 0, 1), group(1, 2, 3)}

			result, err := MergeToTarget(context.Background(), groups, ds, 1, MergeOptions{Policy: policy})
			require.NoError(t, err)
			assert.Equal(t, [][]int{{0, 1, 2, 3}}, members(result.Groups))
			assert.Equal(t, []int{2, 3}, result.Pooled)
		})

		t.Run(string(policy)+" opposite signs", func(t *testing.T) {
			ds := newDataset(
				[]float64{1.5e308}, []float64{1.5e308},
				[]float64{-1.5e308}, []float64{-1.5e308},
				[]float64{0},
			)
			groups := []domain.SimilarityGroup{group(0, 0, 1), group(1, 2, 3), group(2, 4)}

			result, err := MergeToTarget(context.Background(), groups, ds, 2, MergeOptions{Policy: policy})
			require.NoError(t, err)
			assert.Equal(t, [][]int{{0, 1, 4}, {2, 3}}, members(result.Groups))
		})
	}
}
