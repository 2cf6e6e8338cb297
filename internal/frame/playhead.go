package frame

import (
	"math"
	"sync"
	"time"
)

// Playhead is a clock-driven stand-in for an embedded video player. It starts
// paused at the given offset and advances in real time while playing.
type Playhead struct {
	mu      sync.Mutex
	now     func() time.Time
	fps     float64
	base    float64 // seconds at the moment playback last started or was paused
	started time.Time
	playing bool
}

func NewPlayhead(startSeconds, fps float64) *Playhead {
	return newPlayheadWithClock(startSeconds, fps, time.Now)
}

func newPlayheadWithClock(startSeconds, fps float64, now func() time.Time) *Playhead {
	return &Playhead{now: now, fps: fps, base: math.Max(0, startSeconds)}
}

// CurrentTime implements Player. A Playhead is always ready.
func (p *Playhead) CurrentTime() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked(), true
}

func (p *Playhead) positionLocked() float64 {
	if !p.playing {
		return p.base
	}
	return p.base + p.now().Sub(p.started).Seconds()
}

func (p *Playhead) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Playhead) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.started = p.now()
	p.playing = true
}

func (p *Playhead) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.base = p.positionLocked()
	p.playing = false
}

// Toggle switches between playing and paused and reports the new state.
func (p *Playhead) Toggle() bool {
	if p.Playing() {
		p.Pause()
		return false
	}
	p.Play()
	return true
}

// Seek moves to an absolute offset, clamped at zero.
func (p *Playhead) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = math.Max(0, seconds)
	p.started = p.now()
}

// Skip moves by delta seconds.
func (p *Playhead) Skip(delta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = math.Max(0, p.positionLocked()+delta)
	p.started = p.now()
}

// Step moves by whole frames and pauses, landing exactly on a frame boundary.
func (p *Playhead) Step(frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fps <= 0 {
		return
	}
	cur := int(math.Floor(p.positionLocked()*p.fps + floorEps))
	next := cur + frames
	if next < 0 {
		next = 0
	}
	p.base = float64(next) / p.fps
	p.playing = false
}
