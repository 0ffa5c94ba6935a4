package events

import (
	"testing"
	"time"
)

func testTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
}
