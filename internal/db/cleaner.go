package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleGuestCleaner deletes guest accounts not seen within the
// retention window. Registered accounts are never touched.
func StartStaleGuestCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM users
                     WHERE user_type = 'guest'
                       AND last_seen < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean stale guest accounts", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned stale guest accounts", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
