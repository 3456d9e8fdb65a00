package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex(t *testing.T) {
	t.Run("Uncontended", func(t *testing.T) {
		m := NewMutex()
		require.True(t, m.TryLock(DefaultTimeout))
		m.Unlock()
		require.True(t, m.TryLock(DefaultTimeout))
		m.Unlock()
		assert.Zero(t, m.Busy())
	})

	t.Run("TimesOutWhileHeld", func(t *testing.T) {
		m := NewMutex()
		require.True(t, m.TryLock(DefaultTimeout))

		start := time.Now()
		assert.False(t, m.TryLock(20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, uint64(1), m.Busy())

		m.Unlock()
		assert.True(t, m.TryLock(DefaultTimeout))
	})

	t.Run("AcquiresAfterRelease", func(t *testing.T) {
		m := NewMutex()
		require.True(t, m.TryLock(DefaultTimeout))

		go func() {
			time.Sleep(5 * time.Millisecond)
			m.Unlock()
		}()

		assert.True(t, m.TryLock(time.Second))
	})
}
