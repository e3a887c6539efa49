package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driving"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// dayFormat keys the per-day markers.
const dayFormat = "2006-01-02"

// RetryController triggers the range pipeline once per day at a
// configured time and retries failed runs with exponential backoff. It is
// a pure core service with no UI coupling; Run blocks until the context
// is cancelled or Stop is called.
type RetryController struct {
	cfg    domain.ScheduleConfig
	ingest driving.Ingestor

	// now and tick are swappable for tests.
	now  func() time.Time
	tick time.Duration

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	successDay string    // day the scheduled run last succeeded
	triggerDay string    // day the daily trigger last fired
	failedDay  string    // day marked permanently failed
	retryCount int       // backoff retries consumed today
	retryAt    time.Time // pending one-shot retry, zero when none
}

// NewRetryController creates the daily controller.
func NewRetryController(cfg domain.ScheduleConfig, ingest driving.Ingestor) *RetryController {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 5 * time.Minute
	}
	return &RetryController{
		cfg:    cfg,
		ingest: ingest,
		now:    time.Now,
		tick:   time.Minute,
	}
}

// Run starts the minute loop. Runs execute synchronously inside the loop,
// so at most one ingestion is in flight at a time.
func (c *RetryController) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	logger.Infof("scheduler armed for %02d:%02d, max %d retries",
		c.cfg.Hour, c.cfg.Minute, c.cfg.MaxRetries)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		case <-ticker.C:
			c.onTick(ctx, c.now())
		}
	}
}

// Stop shuts the loop down. A run already in flight finishes on its own
// context.
func (c *RetryController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

// onTick decides whether this minute owes a run: either the daily
// trigger time was reached and today has not been attempted, or a
// backoff retry came due.
func (c *RetryController) onTick(ctx context.Context, now time.Time) {
	today := now.Format(dayFormat)

	c.mu.Lock()
	if c.successDay == today || c.failedDay == today {
		c.mu.Unlock()
		return
	}

	due := false
	if !c.retryAt.IsZero() && !now.Before(c.retryAt) {
		c.retryAt = time.Time{}
		due = true
	} else if now.Hour() == c.cfg.Hour && now.Minute() == c.cfg.Minute && c.triggerDay != today {
		// A new scheduled day resets any leftover backoff state.
		c.triggerDay = today
		c.retryCount = 0
		c.retryAt = time.Time{}
		due = true
	}
	c.mu.Unlock()

	if due {
		c.runOnce(ctx, now)
	}
}

// runOnce ingests yesterday as a single-day range and schedules a backoff
// retry on failure.
func (c *RetryController) runOnce(ctx context.Context, now time.Time) {
	yesterday := now.AddDate(0, 0, -1)
	logger.Infof("scheduled ingestion for %s starting", yesterday.Format(dayFormat))

	stats, err := c.ingest.ProcessDateRange(ctx, yesterday, yesterday, func(msg string) {
		logger.Debugf("scheduler: %s", msg)
	})

	failed := err != nil || stats.Failed()
	today := now.Format(dayFormat)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !failed {
		c.successDay = today
		c.retryCount = 0
		c.retryAt = time.Time{}
		logger.Infof("scheduled ingestion succeeded: %d listings, %d details",
			stats.Listings, stats.DetailsFetched)
		return
	}

	reason := describeFailure(stats, err)
	if c.retryCount < c.cfg.MaxRetries {
		delay := c.cfg.BackoffBase << uint(c.retryCount)
		c.retryCount++
		c.retryAt = now.Add(delay)
		logger.Warnf("scheduled ingestion failed (%s); retry %d/%d in %s",
			reason, c.retryCount, c.cfg.MaxRetries, delay)
		return
	}

	c.failedDay = today
	c.retryAt = time.Time{}
	logger.Errorf("scheduled ingestion failed permanently for %s (%s); next attempt tomorrow",
		today, reason)
}

func describeFailure(stats domain.IngestStats, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%d errors, %d pending details", stats.Errors, stats.DetailsPending)
}
