package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farhan-labs/mobicash/internal/notifications"
)

type flakyNotifier struct {
	err   error
	calls int
	slow  time.Duration
}

func (f *flakyNotifier) SendAccountApproved(ctx context.Context, input notifications.SendAccountApprovedInput) error {
	f.calls++

	if f.slow > 0 {
		select {
		case <-time.After(f.slow):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return f.err
}

func testInput() notifications.SendAccountApprovedInput {
	return notifications.SendAccountApprovedInput{
		UserID:  "user-1",
		Email:   "amina@example.com",
		Name:    "Amina Rahman",
		Role:    "user",
		Balance: 40,
	}
}

func TestProtectedNotifier_OpensAfterThreshold(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := n.SendAccountApproved(ctx, testInput()); err == nil {
			t.Fatalf("call %d: expected provider error", i+1)
		}
	}

	// circuit is open now; the provider must not be called again
	err := n.SendAccountApproved(ctx, testInput())

	if !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if inner.calls != 2 {
		t.Errorf("provider called %d times, want 2", inner.calls)
	}
}

func TestProtectedNotifier_RecoversAfterCooldown(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	ctx := context.Background()

	if err := n.SendAccountApproved(ctx, testInput()); err == nil {
		t.Fatalf("expected provider error")
	}
	if err := n.SendAccountApproved(ctx, testInput()); !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	// provider comes back during the cooldown
	inner.err = nil
	time.Sleep(20 * time.Millisecond)

	if err := n.SendAccountApproved(ctx, testInput()); err != nil {
		t.Fatalf("half-open trial failed: %v", err)
	}

	// success closed the circuit again
	if err := n.SendAccountApproved(ctx, testInput()); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
}

func TestProtectedNotifier_TimesOutSlowProvider(t *testing.T) {
	inner := &flakyNotifier{slow: time.Second}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout: 10 * time.Millisecond,
	})

	start := time.Now()
	err := n.SendAccountApproved(context.Background(), testInput())

	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("send took %v; the timeout did not bite", elapsed)
	}
}

func TestProtectedNotifier_PassesInputThrough(t *testing.T) {
	var got notifications.SendAccountApprovedInput

	inner := notifierFunc(func(ctx context.Context, input notifications.SendAccountApprovedInput) error {
		got = input
		return nil
	})

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{})

	if err := n.SendAccountApproved(context.Background(), testInput()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got != testInput() {
		t.Errorf("input = %+v, want %+v", got, testInput())
	}
}

type notifierFunc func(ctx context.Context, input notifications.SendAccountApprovedInput) error

func (f notifierFunc) SendAccountApproved(ctx context.Context, input notifications.SendAccountApprovedInput) error {
	return f(ctx, input)
}
