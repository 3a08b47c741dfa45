package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTreeCommandRegistersFlags(t *testing.T) {
	cmd := NewTreeCommand()

	for _, name := range []string{"no-color", "commit", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "expected flag %q", name)
	}
	assert.Equal(t, "tree [path]", cmd.Use)
}
