package query

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// admissionThrottle bounds how many expensive windowed-query calls can run
// per second against the shared graph-store driver. The teacher has no
// analogue (a CLI tool has exactly one caller); this mirrors the
// golang.org/x/time/rate admission-control pattern used elsewhere in the
// example pack for exactly this kind of shared-resource protection.
type admissionThrottle struct {
	limiter *rate.Limiter
}

func newAdmissionThrottle(requestsPerSecond float64, burst int) *admissionThrottle {
	return &admissionThrottle{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (t *admissionThrottle) wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("query admission throttle: %w", err)
	}
	return nil
}
