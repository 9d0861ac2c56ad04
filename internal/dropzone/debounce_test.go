package dropzone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextSettle(t *testing.T, d *debouncer) settleEvent {
	t.Helper()
	select {
	case ev := <-d.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settle")
		return settleEvent{}
	}
}

func TestDebouncer_SettlesAfterQuietPeriod(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(5*time.Millisecond, done)

	assert.True(t, d.touch("leaf.png"))
	assert.False(t, d.touch("leaf.png"), "already pending")

	ev := nextSettle(t, d)
	assert.True(t, d.settled(ev))
	assert.True(t, d.empty())
}

func TestDebouncer_WriteAfterTimerFiredWaitsAgain(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(5*time.Millisecond, done)

	d.touch("leaf.png")
	fired := nextSettle(t, d)

	// A write lands while the fired settle is still unhandled.
	d.touch("leaf.png")
	assert.False(t, d.settled(fired))
	assert.False(t, d.empty())

	ev := nextSettle(t, d)
	require.True(t, d.settled(ev))
	assert.True(t, d.empty())
}

func TestDebouncer_CancelledFileIgnoresLateSettle(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(5*time.Millisecond, done)

	d.touch("leaf.png")
	fired := nextSettle(t, d)
	assert.True(t, d.cancel("leaf.png"))
	assert.False(t, d.cancel("leaf.png"))

	d.touch("leaf.png")
	assert.False(t, d.settled(fired), "settle from before the removal")
	d.stop()
}
