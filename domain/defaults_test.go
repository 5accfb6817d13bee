package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValueConsistency(t *testing.T) {
	assert.Greater(t, DefaultRows, 0)
	assert.Greater(t, DefaultBands, 0)
	assert.LessOrEqual(t, DefaultRows*DefaultBands, MaxHashFunctions)
	assert.Greater(t, DefaultBucketWidth, 0.0)
	assert.Greater(t, DefaultExpectedClusters, 0)
	assert.Len(t, DefaultDelimiter, 1)

	req := DefaultClusterRequest()
	req.Paths = []string{"points.csv"}
	require.NoError(t, req.Validate())
}

func TestParseHashFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    HashFamily
		wantErr bool
	}{
		{"hyperplane", HashFamilyHyperplane, false},
		{"pstable", HashFamilyPStable, false},
		{"", HashFamilyHyperplane, false},
		{"minhash", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHashFamily(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeanPolicy(t *testing.T) {
	got, err := ParseMeanPolicy("incremental")
	require.NoError(t, err)
	assert.Equal(t, MeanPolicyIncremental, got)

	got, err = ParseMeanPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MeanPolicySnapshot, got)

	_, err = ParseMeanPolicy("lazy")
	assert.True(t, IsConfigurationError(err))
}
