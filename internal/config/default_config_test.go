package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultConfigTOML(t *testing.T) {
	out, err := GenerateDefaultConfigTOML()
	require.NoError(t, err)

	for _, section := range []string{"[input]", "[lsh]", "[merge]", "[output]", "[performance]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, `family = "hyperplane"`)
	assert.Contains(t, out, "bucket_width = 4.0")
	assert.NotContains(t, out, "{{")
}

func TestLoadDefaultConfigFromTOML_MatchesDefaults(t *testing.T) {
	cfg, err := LoadDefaultConfigFromTOML()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}
