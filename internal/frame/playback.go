package frame

import (
	"context"
	"math"
	"sync"
	"time"
)

// Position is the live playback position in frame and millisecond terms.
type Position struct {
	FrameIndex  int   `json:"frame"`
	TimestampMs int64 `json:"timestampMs"`
}

// floorEps absorbs float error so 4.84s at 25fps lands on frame 121, not 120.
const floorEps = 1e-9

// Sample converts a player position in seconds into a Position.
func Sample(seconds, fps float64) Position {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	return Position{
		FrameIndex:  int(math.Floor(seconds*fps + floorEps)),
		TimestampMs: int64(math.Floor(seconds*1000 + floorEps)),
	}
}

// Player reports the current playback position in seconds. ok is false while
// the player is not ready.
type Player interface {
	CurrentTime() (seconds float64, ok bool)
}

// Tracker samples a Player at a fixed interval and remembers the latest
// position. Until the player is ready the initial position is reported.
type Tracker struct {
	player   Player
	fps      float64
	interval time.Duration

	mu     sync.Mutex
	latest Position
}

func NewTracker(player Player, fps float64, initial Position, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Tracker{player: player, fps: fps, interval: interval, latest: initial}
}

func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Poll samples the player once and returns the resulting position.
func (t *Tracker) Poll() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sec, ok := t.player.CurrentTime(); ok {
		t.latest = Sample(sec, t.fps)
	}
	return t.latest
}

func (t *Tracker) Latest() Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Run polls until ctx is cancelled, passing each sample to onSample when it
// is non-nil.
func (t *Tracker) Run(ctx context.Context, onSample func(Position)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pos := t.Poll()
			if onSample != nil {
				onSample(pos)
			}
		}
	}
}
