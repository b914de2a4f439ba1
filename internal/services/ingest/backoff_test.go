package ingest

import (
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	policy := NewRetryPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 8 * time.Second}, // capped
		{10, 8 * time.Second},
	}

	for _, tt := range tests {
		if got := policy.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicyDelayCustomBase(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: 35 * time.Millisecond}

	if got := policy.Delay(1); got != 20*time.Millisecond {
		t.Errorf("Delay(1) = %v, want 20ms", got)
	}
	if got := policy.Delay(2); got != 35*time.Millisecond {
		t.Errorf("Delay(2) = %v, want cap 35ms", got)
	}
}
