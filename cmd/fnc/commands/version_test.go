package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnctui/fnc/pkg/version"
)

func TestVersionCommandPrintsBuildInfo(t *testing.T) {
	cmd := NewVersionCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), version.Version)
	assert.Contains(t, out.String(), version.Commit)
	assert.Contains(t, out.String(), version.Date)
}
