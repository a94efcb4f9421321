package utils

import (
	"testing"
	"time"
)

func TestCooldownGate(t *testing.T) {
	gate := NewCooldownGate(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !gate.Allow("g1:u1", now) {
		t.Fatal("first hit should pass")
	}
	if gate.Allow("g1:u1", now.Add(30*time.Second)) {
		t.Fatal("hit inside the window should be blocked")
	}
	if !gate.Allow("g1:u1", now.Add(time.Minute)) {
		t.Fatal("hit after the window should pass")
	}
}

func TestCooldownGateKeysAreIndependent(t *testing.T) {
	gate := NewCooldownGate(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !gate.Allow("g1:u1", now) {
		t.Fatal("first hit should pass")
	}
	if !gate.Allow("g1:u2", now) {
		t.Fatal("another key should not be throttled")
	}
	if !gate.Allow("g2:u1", now) {
		t.Fatal("another guild should not be throttled")
	}
}
