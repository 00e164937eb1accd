package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nop struct{ Base }

func (nop) Prepare() error { return nil }
func (nop) Do() error      { return nil }
func (nop) Undo() error    { return nil }

func TestEvictionReleasesCommands(t *testing.T) {
	h := NewHistory(2, nil)
	for range 5 {
		h.Push(&nop{Base: NewBase("nop", true)})
	}
	require.Equal(t, 2, h.Len())
	for i, c := range h.commands[h.Len():cap(h.commands)] {
		assert.Nil(t, c, "slot %d past the end still holds a command", h.Len()+i)
	}
}
