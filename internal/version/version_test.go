package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		BuildTime: "2025-01-30T12:00:00Z",
	}

	assert.Equal(t, "ocms v1.0.0 (commit abc1234, built 2025-01-30T12:00:00Z)", info.String())
}

func TestInfoZeroValue(t *testing.T) {
	// Zero value before ldflags injection.
	var info Info

	assert.Equal(t, "ocms dev (commit unknown, built unknown)", info.String())
}

func TestInfoLogAttrs(t *testing.T) {
	info := Info{Version: "v2", GitCommit: "c", BuildTime: "t"}
	assert.Equal(t, []any{"version", "v2", "commit", "c", "built", "t"}, info.LogAttrs())
}
