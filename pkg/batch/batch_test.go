package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
)

type item struct {
	sku   string
	price float64
}

func itemKey(i item) string { return i.sku }

func TestPropagateEmpty(t *testing.T) {
	called := false
	results := Propagate(context.Background(), nil, itemKey, func(context.Context, item) error {
		called = true
		return nil
	})

	assert.Empty(t, results)
	assert.False(t, called, "empty batch must not contact the sink")
}

func TestPropagateOrderAndLength(t *testing.T) {
	items := []item{{sku: "A"}, {sku: "B"}, {sku: "C"}}

	results := Propagate(context.Background(), items, itemKey, func(_ context.Context, i item) error {
		return nil
	})

	require.Len(t, results, len(items))
	for idx, r := range results {
		assert.Equal(t, items[idx].sku, r.Key)
		assert.True(t, r.Success)
	}
}

func TestPropagateContinuesPastFailures(t *testing.T) {
	items := []item{{sku: "A"}, {sku: "B"}, {sku: "C"}}

	var applied []string
	results := Propagate(context.Background(), items, itemKey, func(_ context.Context, i item) error {
		if i.sku == "B" {
			return errors.NewNotFoundError("item", i.sku)
		}
		applied = append(applied, i.sku)
		return nil
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "not found")
	assert.True(t, results[2].Success)

	// Items before and after the failure are still applied.
	assert.Equal(t, []string{"A", "C"}, applied)
}

func TestPropagateSequential(t *testing.T) {
	items := []item{{sku: "A"}, {sku: "B"}, {sku: "C"}}

	var order []string
	Propagate(context.Background(), items, itemKey, func(_ context.Context, i item) error {
		order = append(order, i.sku)
		return nil
	})

	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestPropagateStopsOnCancellation(t *testing.T) {
	items := []item{{sku: "A"}, {sku: "B"}, {sku: "C"}}

	ctx, cancel := context.WithCancel(context.Background())
	var applied []string
	results := Propagate(ctx, items, itemKey, func(_ context.Context, i item) error {
		applied = append(applied, i.sku)
		if i.sku == "A" {
			cancel()
		}
		return nil
	})

	// Only the in-flight item completes; the rest are recorded as failed
	// so the result list stays order-matched.
	assert.Equal(t, []string{"A"}, applied)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
}

func TestTallyAndFailedKeys(t *testing.T) {
	results := []Result{
		{Key: "A", Success: true},
		{Key: "B", Error: "boom"},
		{Key: "C", Success: true},
		{Key: "D", Error: "boom"},
	}

	ok, failed := Tally(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"B", "D"}, FailedKeys(results))

	assert.Nil(t, FailedKeys(nil))
}
