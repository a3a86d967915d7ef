package preload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Has("a"))
	assert.True(t, r.HasAll(nil))
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Snapshot())
	assert.False(t, r.Busy())

	r.markLoaded("b")
	r.markLoaded("a")
	r.markLoaded("a")

	assert.True(t, r.Has("a"))
	assert.True(t, r.Has("b"))
	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"a", "b"}, r.Snapshot())
	assert.True(t, r.HasAll([]string{"a", "b"}))
	assert.False(t, r.HasAll([]string{"a", "c"}))

	t.Run("Clear", func(t *testing.T) {
		r.Clear()
		assert.Equal(t, 0, r.Count())
		assert.False(t, r.Has("a"))
		assert.False(t, r.Has("b"))

		// Clearing twice is the same as clearing once.
		r.Clear()
		assert.Equal(t, 0, r.Count())
	})

	t.Run("RunGuard", func(t *testing.T) {
		assert.True(t, r.tryAcquire())
		assert.True(t, r.Busy())
		assert.False(t, r.tryAcquire())

		r.release()
		assert.False(t, r.Busy())
		assert.True(t, r.tryAcquire())
		r.release()
	})

	t.Run("ClearLeavesGuardAlone", func(t *testing.T) {
		assert.True(t, r.tryAcquire())
		r.Clear()
		assert.True(t, r.Busy())
		r.release()
		assert.False(t, r.Busy())
	})
}
