package dialog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFutureSettlesOnce(t *testing.T) {
	f, resolve, reject := NewPromise[int]()
	if f.Settled() {
		t.Fatal("new promise should be unsettled")
	}
	if _, err := f.Result(); !errors.Is(err, ErrNotSettled) {
		t.Fatalf("Result before settle: got %v, want ErrNotSettled", err)
	}

	resolve(1)
	resolve(2)
	reject(errors.New("late"))

	v, err := f.Result()
	if err != nil {
		t.Fatalf("Result: unexpected error %v", err)
	}
	if v != 1 {
		t.Errorf("value = %d, want 1", v)
	}
}

func TestFutureWait(t *testing.T) {
	t.Run("resolved", func(t *testing.T) {
		v, err := Resolved("ok").Wait(context.Background())
		if err != nil || v != "ok" {
			t.Errorf("Wait = (%q, %v), want (\"ok\", nil)", v, err)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Rejected[string](boom).Wait(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("Wait error = %v, want %v", err, boom)
		}
	})

	t.Run("context done first", func(t *testing.T) {
		f, _, _ := NewPromise[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := f.Wait(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Wait error = %v, want deadline exceeded", err)
		}
		if f.Settled() {
			t.Error("timing out a wait must not settle the future")
		}
	})
}

func TestGo(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 42, nil
	})
	if f.Settled() {
		t.Fatal("future settled before fn returned")
	}
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
}
