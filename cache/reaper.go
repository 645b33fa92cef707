package cache

import (
	"context"
	"log/slog"
	"time"
)

// reapLoop scans the key table every interval and soft-removes entries the
// age policy selects. It exits when ctx is cancelled and never restarts.
func (c *cache[K, V]) reapLoop(ctx context.Context, interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Close may race with the tick; it waits for this cycle to finish.
			expired, removed := c.s.reap()
			if expired > 0 {
				c.log.Debug("reaper cycle",
					slog.Int("expired", expired),
					slog.Int("removed", removed),
					slog.Int("vetoed", expired-removed))
			}
		}
	}
}
