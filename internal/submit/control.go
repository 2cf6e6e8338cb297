package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrInFlight = errors.New("a submission is already in flight")

type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Outcome is the result of one resolved submission. Exactly one of Response
// and Err is set.
type Outcome struct {
	Request  Request
	Response *Response
	Verdict  Verdict
	Err      error
}

// Summary is the in-band status text for the outcome.
func (o Outcome) Summary() string {
	if o.Err != nil {
		return "❌ Error: " + o.Err.Error()
	}
	label := o.Verdict.Label()
	if o.Verdict == VerdictUnknown {
		label = "📝 " + describeStatus(o.Response.Status)
	}
	var b strings.Builder
	b.WriteString(label)
	fmt.Fprintf(&b, "\nFrame %d (%dms)", o.Request.Frame, o.Request.Timestamp())
	if o.Response.Description != "" {
		b.WriteString("\n" + o.Response.Description)
	}
	return b.String()
}

// Control is the submit button: Idle until triggered, Submitting until the
// backend resolves, then Idle again with the latest outcome. Triggers while
// Submitting are refused.
type Control struct {
	mu    sync.Mutex
	state State
	last  *Outcome
}

func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the most recent outcome, if any.
func (c *Control) Last() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Outcome{}, false
	}
	return *c.last, true
}

// Begin moves to Submitting or fails with ErrInFlight.
func (c *Control) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return ErrInFlight
	}
	c.state = StateSubmitting
	return nil
}

// Finish records o and returns to Idle. Calling it while Idle just replaces
// the last outcome.
func (c *Control) Finish(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.last = &o
}

// Submit runs one full cycle against backend. The returned error is
// ErrInFlight or a validation error; backend failures end up in Outcome.Err.
func (c *Control) Submit(ctx context.Context, backend Backend, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := c.Begin(); err != nil {
		return Outcome{}, err
	}

	o := Outcome{Request: req}
	resp, err := backend.Submit(ctx, &req)
	if err != nil {
		o.Err = err
	} else {
		o.Response = resp
		o.Verdict = resp.Verdict()
	}
	c.Finish(o)
	return o, nil
}
