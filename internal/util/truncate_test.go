package util

import (
	"strings"
	"testing"
)

func TestTruncateMiddlePassThroughAtCap(t *testing.T) {
	text := strings.Repeat("a", 6000)
	if got := TruncateMiddle(text, 6000); got != text {
		t.Fatalf("text at the cap must pass through unmodified")
	}
}

func TestTruncateMiddleSplitsOverCap(t *testing.T) {
	text := strings.Repeat("h", 3000) + "x" + strings.Repeat("t", 3000)
	got := TruncateMiddle(text, 6000)
	want := strings.Repeat("h", 3000) + TruncationMarker + strings.Repeat("t", 3000)
	if got != want {
		t.Fatalf("unexpected truncation: head=%q... tail=...%q", got[:10], got[len(got)-10:])
	}
	if strings.Contains(got, "x") {
		t.Fatalf("middle character should have been discarded")
	}
}

func TestTruncateMiddleShortText(t *testing.T) {
	if got := TruncateMiddle("short", 6000); got != "short" {
		t.Fatalf("short text changed: %q", got)
	}
}
