package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"swaplens/internal/model"
)

func TestWithRetryTransientRecovers(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("%w: connection reset", model.ErrTransportError)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryExhausted(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return fmt.Errorf("%w: timeout", model.ErrTransportError)
	})
	if !errors.Is(err, model.ErrTransportError) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryPermanentErrorNoRetry(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return fmt.Errorf("%w: 0xabc", model.ErrTransactionReverted)
	})
	if !errors.Is(err, model.ErrTransactionReverted) {
		t.Fatalf("expected reverted error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("permanent errors must not retry, got %d attempts", attempts)
	}
}

func TestWithRetryContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, 5, time.Minute, func(context.Context) error {
		return fmt.Errorf("%w: timeout", model.ErrTransportError)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
