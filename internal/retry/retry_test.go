package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func quickConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), quickConfig(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Expected success, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), quickConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	sentinel := errors.New("always fails")
	err := Do(context.Background(), quickConfig(), func() error {
		calls++
		return sentinel
	})

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped original error, got %v", err)
	}
	// MaxRetries of 3 means 1 initial attempt + 3 retries
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}
}

func TestDoCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, quickConfig(), func() error {
		return errors.New("fail")
	})

	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
