package backend

import (
	"context"
	"fmt"
	"time"
)

// WaitForSummary polls GetSummary until the meeting's summary reaches a
// terminal state. A summary in StatusError is returned alongside an
// error carrying the backend's message. Cancellation and deadlines come
// from ctx.
func (c *Client) WaitForSummary(ctx context.Context, id int, interval time.Duration) (*Summary, error) {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		summary, err := c.GetSummary(ctx, id)
		if err != nil {
			return nil, err
		}

		switch summary.Status {
		case StatusReady:
			return summary, nil
		case StatusError:
			return summary, fmt.Errorf("summarization failed: %s", summary.Error)
		}

		c.logger.Debug("summary not ready, waiting", "meeting", id, "status", summary.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
