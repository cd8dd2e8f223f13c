// Package testfixtures provides deterministic stand-ins for the injected
// clock and id generator used across service tests.
package testfixtures

import (
	"fmt"
	"sync"
	"time"
)

// FixedClock returns a clock that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// SequentialIDs returns an id generator producing prefix-0001, prefix-0002,
// and so on. Safe for concurrent use.
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	sequence := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		sequence++
		return fmt.Sprintf("%s-%04d", prefix, sequence)
	}
}
