// Package batch applies a list of items against an external write sink one
// at a time, collecting per-item success or failure without aborting the
// remainder. The loop is deliberately sequential: the external systems are
// rate limited and share a single session token acquired before the batch.
package batch

import (
	"context"

	"github.com/jumpingbeanltd/price-dashboard/pkg/logging"
)

// Result is the outcome for one submitted item. The result list is always
// the same length as the input list and order-matched to it, so callers can
// correlate results back to their rows.
type Result struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ApplyFunc applies one item against the external system. Errors it
// returns are captured as per-item failures, not propagated.
type ApplyFunc[T any] func(ctx context.Context, item T) error

// Propagate applies each item in input order. An item's failure is
// recorded and the loop continues; nothing is retried. An empty input
// returns an empty result list without touching the sink.
//
// Systemic failures (session acquisition, no network before any item is
// attempted) are the caller's to detect before calling Propagate; see
// errors.BatchError.
func Propagate[T any](ctx context.Context, items []T, key func(T) string, apply ApplyFunc[T]) []Result {
	results := make([]Result, 0, len(items))

	for _, item := range items {
		k := key(item)
		if err := ctx.Err(); err != nil {
			// Cancelled between items: the remaining items are recorded
			// as failures so the result list stays order-matched.
			results = append(results, Result{Key: k, Error: err.Error()})
			continue
		}
		if err := apply(ctx, item); err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("key", k).
				Msg("Batch item failed")
			results = append(results, Result{Key: k, Error: err.Error()})
			continue
		}
		results = append(results, Result{Key: k, Success: true})
	}

	return results
}

// Tally counts successes and failures in a result list.
func Tally(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// FailedKeys returns the keys of failed items in result order, for callers
// that want to re-submit a filtered batch.
func FailedKeys(results []Result) []string {
	var keys []string
	for _, r := range results {
		if !r.Success {
			keys = append(keys, r.Key)
		}
	}
	return keys
}
