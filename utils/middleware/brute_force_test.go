package middleware

import (
	"testing"
	"time"
)

func TestLockDuration(t *testing.T) {
	cases := []struct {
		attempts int64
		want     time.Duration
	}{
		{1, 0},
		{4, 0},
		{5, 2 * time.Minute},
		{9, 2 * time.Minute},
		{10, time.Hour},
		{25, 24 * time.Hour},
		{100, 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := lockDuration(tc.attempts); got != tc.want {
			t.Fatalf("lockDuration(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestOperatorKeyIsCaseInsensitive(t *testing.T) {
	if operatorKey("alpha") != operatorKey("ALPHA") {
		t.Fatal("expected operator keys to ignore case")
	}
}
