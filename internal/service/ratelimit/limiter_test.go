package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowExhaustsBucket(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0.0001) {
			t.Fatalf("token %d should be allowed", i)
		}
	}
	if l.Allow("k", 3, 0.0001) {
		t.Fatalf("bucket should be empty")
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.0001) {
		t.Fatalf("first token for a")
	}
	if l.Allow("a", 1, 0.0001) {
		t.Fatalf("a exhausted")
	}
	if !l.Allow("b", 1, 0.0001) {
		t.Fatalf("b has its own bucket")
	}
}

func TestWaitRefills(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 100) {
		t.Fatalf("first token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 100); err != nil {
		t.Fatalf("wait should succeed after refill: %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 0.0001) {
		t.Fatalf("first token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.0001); err == nil {
		t.Fatalf("wait must fail when the context expires first")
	}
}
