package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTimelineCommandRegistersFlags(t *testing.T) {
	cmd := NewTimelineCommand()

	for _, name := range []string{"tag", "branch", "commit", "limit", "type", "user", "utc", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "expected flag %q", name)
	}
}

func TestNewTimelineCommandAcceptsAtMostOnePositionalArg(t *testing.T) {
	cmd := NewTimelineCommand()
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a"}))
}
