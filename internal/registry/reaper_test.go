package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunReaperSweepsOnTicker(t *testing.T) {
	reg := New(4)

	base := time.Now()
	reg.now = func() time.Time { return base }
	stale := reg.CreateRoom()

	reg.now = func() time.Time { return base.Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	RunReaper(ctx, reg, 5*time.Millisecond, 30*time.Minute)

	require.Eventually(t, func() bool { return !reg.RoomExists(stale) },
		time.Second, 5*time.Millisecond)
}

func TestRunReaperStopsOnContextCancel(t *testing.T) {
	reg := New(4)

	ctx, cancel := context.WithCancel(context.Background())
	RunReaper(ctx, reg, time.Millisecond, time.Nanosecond)
	cancel()

	// After cancel, new stale rooms survive the (stopped) reaper.
	time.Sleep(20 * time.Millisecond)
	base := time.Now().Add(-time.Hour)
	reg.now = func() time.Time { return base }
	code := reg.CreateRoom()
	reg.now = time.Now

	time.Sleep(20 * time.Millisecond)
	require.True(t, reg.RoomExists(code))
}
