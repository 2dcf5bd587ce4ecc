package engine

import "time"

// Clock is the time control information sent with a go command.
type Clock struct {
	Remaining time.Duration
	Increment time.Duration
	MoveTime  time.Duration

	HasRemaining bool // Remaining was given
	HasMoveTime  bool // MoveTime was given
}

const (
	// DefaultMoveOverhead is reserved for protocol and I/O latency.
	DefaultMoveOverhead = 10 * time.Millisecond

	movesToGo = 25
	minMove   = 5 * time.Millisecond
	maxFrac   = 0.7 // never spend more than this share of the remaining time
)

// AllocateTime returns the search time for one move, or zero for unlimited.
// A fixed move time wins over the clock.
func AllocateTime(c Clock, overhead time.Duration) time.Duration {
	if c.HasMoveTime {
		return max(c.MoveTime-overhead, minMove)
	}
	if !c.HasRemaining {
		return 0
	}

	usable := max(c.Remaining-overhead, 0)
	moveTime := usable/movesToGo + c.Increment*3/4

	ceiling := time.Duration(float64(c.Remaining) * maxFrac)
	return Clamp(moveTime, minMove, max(ceiling, minMove))
}
