package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludo-technologies/lshclust/internal/version"
)

func TestShort(t *testing.T) {
	assert.NotEmpty(t, version.Short())
}

func TestShort_LdflagsWin(t *testing.T) {
	saved := version.Version
	defer func() { version.Version = saved }()

	version.Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", version.Short())
}

func TestInfo(t *testing.T) {
	info := version.Info()

	assert.True(t, strings.HasPrefix(info, "lshclust "))
	assert.Contains(t, info, runtime.Version())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
	for _, field := range []string{"Commit:", "Built:", "Go:", "OS/Arch:"} {
		assert.Contains(t, info, field)
	}
}
