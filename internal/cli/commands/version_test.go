package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, info BuildInfo, args ...string) string {
	t.Helper()
	cmd := NewVersionCommand(info)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{}, args...))
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{version: "0.1.0", want: "Log Lines v0.1.0"},
		{version: "1.2.3", want: "Log Lines v1.2.3"},
		{version: "dev", want: "Log Lines vdev"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			out := runVersion(t, BuildInfo{Version: tt.version, BuildDate: "2026-01-02", GitCommit: "abc123"})

			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "filterable, highlightable log lines")
			assert.Contains(t, out, "abc123")
			assert.Contains(t, out, "2026-01-02")
			assert.Contains(t, out, "json, yaml")
			assert.Contains(t, out, "table")
		})
	}
}

func TestVersionCommand_Short(t *testing.T) {
	out := runVersion(t, BuildInfo{Version: "1.2.3"}, "--short")
	assert.Equal(t, "1.2.3\n", out)
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}
