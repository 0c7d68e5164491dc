// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"math"
	"time"
)

// RetryBaseDelay is the first backoff between conversion attempts. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// withRetry re-runs a failed conversion with exponential backoff: the
// delay starts at RetryBaseDelay and doubles each attempt. The last error
// is returned once retries are exhausted or ctx is done.
type withRetry struct {
	next    Converter
	retries int
}

func (w withRetry) Convert(ctx context.Context, docxPath, pdfPath string) error {
	for attempt := 0; ; attempt++ {
		err := w.next.Convert(ctx, docxPath, pdfPath)
		if err == nil || attempt >= w.retries || ctx.Err() != nil {
			return err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
	}
}
