package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoDefault(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "suite")
	assert.Contains(t, info, Version)
	assert.Contains(t, info, runtime.GOOS)
	assert.Contains(t, info, runtime.GOARCH)
}

func TestInfoWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})

	Version = "2.4.0"
	Commit = "f00dfacecafe01"
	Date = "2026-10-01"

	info := Info()
	assert.Contains(t, info, "2.4.0")
	assert.Contains(t, info, "f00dfac")
	assert.NotContains(t, info, "f00dfacecafe01")
	assert.Contains(t, info, "2026-10-01")

	b := Build()
	assert.Equal(t, "2.4.0", b.Version)
	assert.Equal(t, "f00dfac", b.Commit)
	assert.Equal(t, runtime.Version(), b.Runtime)
}

func TestShort(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abcdefghij", "abcdefg"},
		{"abc1234", "abc1234"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, short(tt.input))
		})
	}
}
