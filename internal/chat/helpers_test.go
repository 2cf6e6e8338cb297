package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// memBackend keeps the encoded snapshot in memory, like a single
// localStorage entry.
type memBackend struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (b *memBackend) Load(_ context.Context) (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	if b.data == nil {
		return nil, nil
	}
	return UnmarshalSnapshot(b.data)
}

func (b *memBackend) Save(_ context.Context, snap *Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	b.data = data
	b.saves++
	return nil
}

func (b *memBackend) Close() error { return nil }

func (b *memBackend) stored() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil
	}
	snap, _ := UnmarshalSnapshot(b.data)
	return snap
}

var errDiskFull = errors.New("disk full")

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("chat_%d", n)
	}
}

func openTestStore(b *memBackend) (*Store, error) {
	return Open(context.Background(), b, WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
}

// recordingView captures what the controller pushes.
type recordingView struct {
	states  []State
	notices []Notice
}

func (v *recordingView) Refresh(s State) { v.states = append(v.states, s) }
func (v *recordingView) Notify(n Notice) { v.notices = append(v.notices, n) }

func (v *recordingView) last() State {
	if len(v.states) == 0 {
		return State{}
	}
	return v.states[len(v.states)-1]
}
