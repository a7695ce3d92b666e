package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})

	if timeout.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", timeout.config.Timeout)
	}
	if timeout.config.Detach {
		t.Error("Detach should default to false")
	}
}

func TestTimeout_Execute(t *testing.T) {
	queryErr := errors.New("access denied")
	tests := []struct {
		name    string
		timeout time.Duration
		op      func(context.Context) error
		want    []error
	}{
		{"success", time.Second, func(context.Context) error { return nil }, nil},
		{"error passes through", time.Second, func(context.Context) error { return queryErr }, []error{queryErr}},
		{"slow op times out", 10 * time.Millisecond, func(context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}, []error{ErrTimeout, context.DeadlineExceeded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTimeout(TimeoutConfig{Timeout: tt.timeout}).Execute(context.Background(), tt.op)
			if tt.want == nil && err != nil {
				t.Fatalf("Execute() error = %v, want nil", err)
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Execute() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestTimeout_ExecuteContextCancelled(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestTimeout_DetachIgnoresParentCancel(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second, Detach: true})

	ctx, cancel := context.WithCancel(context.Background())

	err := timeout.Execute(ctx, func(opCtx context.Context) error {
		cancel()
		select {
		case <-opCtx.Done():
			return opCtx.Err()
		case <-time.After(30 * time.Millisecond):
			return nil
		}
	})

	if err != nil {
		t.Errorf("Execute() error = %v, want nil after parent cancel", err)
	}
}

func TestTimeout_DetachStillTimesOut(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond, Detach: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want DeadlineExceeded", err)
	}
}

func TestTimeout_RecoversPanic(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		panic("nil measurement")
	})

	if !errors.Is(err, ErrPanic) {
		t.Fatalf("Execute() error = %v, want ErrPanic", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "nil measurement" {
		t.Errorf("PanicError = %v", pe)
	}
}

func TestCall_ReturnsValue(t *testing.T) {
	got, err := Call(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("Call() = %v, %v, want 42, nil", got, err)
	}
}

func TestCall_IgnoredContextStillBounded(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	got, err := Call(context.Background(), 20*time.Millisecond, func(context.Context) (string, error) {
		<-release
		return "late", nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Call() error = %v, want ErrTimeout", err)
	}
	if got != "" {
		t.Errorf("Call() = %q, want zero value on timeout", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Call() returned after %v, want about 20ms", elapsed)
	}
}

func TestCall_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Call(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
}
