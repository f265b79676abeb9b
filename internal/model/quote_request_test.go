package model

import (
	"regexp"
	"testing"
	"time"
)

func TestEnsureRequestID(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	quote := QuoteRequest{}
	quote.EnsureRequestID(now)

	pattern := regexp.MustCompile(`^REQ\d{8}$`)
	if !pattern.MatchString(quote.RequestID) {
		t.Fatalf("request id %q does not match REQ+8 digits", quote.RequestID)
	}

	// An already-set id is kept unchanged through subsequent saves
	original := quote.RequestID
	quote.EnsureRequestID(now.Add(time.Minute))
	if quote.RequestID != original {
		t.Fatalf("expected request id unchanged, got %q", quote.RequestID)
	}
}

func TestEnsureRequestIDDistinctAcrossTime(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	a := QuoteRequest{}
	a.EnsureRequestID(now)
	b := QuoteRequest{}
	b.EnsureRequestID(now.Add(time.Millisecond))

	if a.RequestID == b.RequestID {
		t.Fatalf("expected distinct request ids, both %q", a.RequestID)
	}
}
