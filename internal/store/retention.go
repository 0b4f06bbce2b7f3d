package store

import (
	"context"
	"log"
	"time"
)

// RunRetention deletes requests older than days every interval until ctx ends
func RunRetention(ctx context.Context, st Store, days int, interval time.Duration) {
	if days <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	purge := func() {
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := st.DeleteRequestsBefore(ctx, cutoff)
		if err != nil {
			log.Printf("⚠️ Retention cleanup failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("🧹 Retention removed %d requests older than %s", n, cutoff.Format(time.RFC3339))
		}
	}

	purge()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
