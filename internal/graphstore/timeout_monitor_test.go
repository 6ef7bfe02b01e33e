package graphstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMonitorQueryExecution_ReturnsElapsedDuration(t *testing.T) {
	tm := NewTimeoutMonitor()
	duration := tm.MonitorQueryExecution(context.Background(), "op", time.Second, func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	if duration < 5*time.Millisecond {
		t.Errorf("duration = %v, want at least 5ms", duration)
	}
}

func TestMonitorQueryExecution_PropagatesUnderlyingErrorButStillReturnsDuration(t *testing.T) {
	tm := NewTimeoutMonitor()
	wantErr := errors.New("boom")
	var gotErr error
	duration := tm.MonitorQueryExecution(context.Background(), "op", time.Second, func() error {
		gotErr = wantErr
		return gotErr
	})
	if duration < 0 {
		t.Errorf("duration = %v, want non-negative", duration)
	}
	if !errors.Is(gotErr, wantErr) {
		t.Errorf("fn's error = %v, want %v", gotErr, wantErr)
	}
}

func TestMonitorWithContext_ReturnsUnderlyingError(t *testing.T) {
	tm := NewTimeoutMonitor()
	wantErr := errors.New("boom")
	err := tm.MonitorWithContext(context.Background(), "op", time.Second, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestMonitorWithContext_CancelsFnContextAfterTimeout(t *testing.T) {
	tm := NewTimeoutMonitor()
	err := tm.MonitorWithContext(context.Background(), "op", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestMonitorWithContext_SucceedsWithinTimeout(t *testing.T) {
	tm := NewTimeoutMonitor()
	err := tm.MonitorWithContext(context.Background(), "op", time.Second, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimeoutTracker_RecordExecutionAccumulatesAverageAndMax(t *testing.T) {
	tt := NewTimeoutTracker()
	tt.RecordExecution("op", 10*time.Millisecond, false)
	tt.RecordExecution("op", 30*time.Millisecond, true)

	stats := tt.GetStats("op")
	if stats == nil {
		t.Fatal("expected stats for op")
	}
	if stats.TotalExecutions != 2 {
		t.Errorf("TotalExecutions = %d, want 2", stats.TotalExecutions)
	}
	if stats.TimeoutCount != 1 {
		t.Errorf("TimeoutCount = %d, want 1", stats.TimeoutCount)
	}
	if stats.MaxDuration != 30*time.Millisecond {
		t.Errorf("MaxDuration = %v, want 30ms", stats.MaxDuration)
	}
	if stats.AverageDuration != 20*time.Millisecond {
		t.Errorf("AverageDuration = %v, want 20ms", stats.AverageDuration)
	}
	if stats.TimeoutPercentage != 50 {
		t.Errorf("TimeoutPercentage = %v, want 50", stats.TimeoutPercentage)
	}
}

func TestTimeoutTracker_GetStatsUnknownOperationReturnsNil(t *testing.T) {
	tt := NewTimeoutTracker()
	if stats := tt.GetStats("nonexistent"); stats != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
}

func TestTimeoutTracker_GetAllStatsReturnsEveryTrackedOperation(t *testing.T) {
	tt := NewTimeoutTracker()
	tt.RecordExecution("a", time.Millisecond, false)
	tt.RecordExecution("b", time.Millisecond, false)

	all := tt.GetAllStats()
	if len(all) != 2 {
		t.Fatalf("expected 2 operations tracked, got %d", len(all))
	}
}
