package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	foregrounds int
	backgrounds int
}

func (o *countingObserver) OnForegrounded() { o.foregrounds++ }
func (o *countingObserver) OnBackgrounded() { o.backgrounds++ }

func TestBridge_NotifiesObservers(t *testing.T) {
	b := NewBridge()
	first := &countingObserver{}
	second := &countingObserver{}

	b.Register(first)
	b.Register(second)
	b.Register(first) // duplicates are ignored
	b.Register(nil)

	b.Foreground()
	b.Background()
	b.Foreground()

	assert.Equal(t, 2, first.foregrounds)
	assert.Equal(t, 1, first.backgrounds)
	assert.Equal(t, 2, second.foregrounds)
}

func TestBridge_Unregister(t *testing.T) {
	b := NewBridge()
	kept := &countingObserver{}
	dropped := &countingObserver{}

	b.Register(kept)
	b.Register(dropped)
	b.Unregister(dropped)
	b.Unregister(dropped) // second removal is a no-op
	b.Unregister(&countingObserver{})

	b.Foreground()

	require.Equal(t, 1, kept.foregrounds)
	require.Equal(t, 0, dropped.foregrounds)
}
