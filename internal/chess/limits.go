package chess

import (
	"fmt"
	"time"
)

const (
	DefaultDepth = 3
	MaxDepth     = 8
)

// Budget bounds one search. Without Timed the search runs to completion at
// Depth; with Timed a TimeLimit of zero still cuts off at the root.
type Budget struct {
	Depth     int
	TimeLimit time.Duration
	Timed     bool
}

func (b Budget) Validate() error {
	if b.Depth < 0 {
		return fmt.Errorf("depth must be >= 0: %d", b.Depth)
	}
	if b.TimeLimit < 0 {
		return fmt.Errorf("time limit must be >= 0: %s", b.TimeLimit)
	}
	return nil
}
