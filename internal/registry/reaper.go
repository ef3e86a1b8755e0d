package registry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunReaper sweeps the registry on a ticker and drops rooms that were
// created but never joined. A room whose creator abandons the join flow
// would otherwise live forever (nobody ever decrements it to zero).
// Run once at service boot.
func RunReaper(ctx context.Context, reg *Registry, interval, maxAge time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if n := reg.ReapIdle(maxAge); n > 0 {
					zap.L().Debug("reaper.swept", zap.Int("rooms", n))
				}
			}
		}
	}()
}
