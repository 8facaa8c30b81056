package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestLRUStoreGetSet(t *testing.T) {
	s := NewLRUStore(4, time.Minute)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != "v" {
		t.Fatalf("got %q, want v", v)
	}
}

func TestLRUStoreEvictsOldest(t *testing.T) {
	s := NewLRUStore(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Set(ctx, fmt.Sprintf("k%d", i), []byte("v")); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if _, ok, _ := s.Get(ctx, "k0"); ok {
		t.Fatalf("k0 should have been evicted")
	}
	if _, ok, _ := s.Get(ctx, "k2"); !ok {
		t.Fatalf("k2 should still be cached")
	}
}

func TestLRUStoreZeroSizeUsesDefault(t *testing.T) {
	s := NewLRUStore(0, 0)
	ctx := context.Background()
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit after set")
	}
}
