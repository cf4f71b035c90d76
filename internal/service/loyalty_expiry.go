package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

// RunExpirySweeper expires stale loyalty points every interval until ctx is done.
func RunExpirySweeper(ctx context.Context, loyaltyService LoyaltyService, interval time.Duration) {
	if interval <= 0 {
		log.Warn("[expiry] sweep interval is not positive, points expiry is off")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("[expiry] sweeper started, interval %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("[expiry] sweeper stopped")
			return
		case <-ticker.C:
			count, err := loyaltyService.ExpirePoints(ctx, time.Now().UTC())
			if err != nil {
				log.Errorf("[expiry] sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Infof("[expiry] expired points for %d customers", count)
			}
		}
	}
}
