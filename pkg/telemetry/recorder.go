package telemetry

import (
	"context"
	"time"
)

// FinishFunc completes a render observation.
type FinishFunc func(patches int, err error)

// Recorder receives element runtime events.
type Recorder interface {
	// Render marks the start of a render cycle for tag. The returned
	// function must be called exactly once when the cycle ends.
	Render(ctx context.Context, tag string) (context.Context, FinishFunc)

	// UpdateDeferred counts an update request coalesced into a later cycle.
	UpdateDeferred(tag string)

	// Event records one dispatched event.
	Event(tag, typ string, duration time.Duration, err error)
}

type nop struct{}

func (nop) Render(ctx context.Context, _ string) (context.Context, FinishFunc) {
	return ctx, func(int, error) {}
}

func (nop) UpdateDeferred(string) {}

func (nop) Event(string, string, time.Duration, error) {}

// Nop is a Recorder that records nothing.
var Nop Recorder = nop{}

type multi []Recorder

// Multi returns a Recorder forwarding to every non-nil recorder in order.
func Multi(recorders ...Recorder) Recorder {
	var m multi
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}
	switch len(m) {
	case 0:
		return Nop
	case 1:
		return m[0]
	}
	return m
}

func (m multi) Render(ctx context.Context, tag string) (context.Context, FinishFunc) {
	finishers := make([]FinishFunc, len(m))
	for i, r := range m {
		ctx, finishers[i] = r.Render(ctx, tag)
	}
	return ctx, func(patches int, err error) {
		for i := len(finishers) - 1; i >= 0; i-- {
			finishers[i](patches, err)
		}
	}
}

func (m multi) UpdateDeferred(tag string) {
	for _, r := range m {
		r.UpdateDeferred(tag)
	}
}

func (m multi) Event(tag, typ string, d time.Duration, err error) {
	for _, r := range m {
		r.Event(tag, typ, d, err)
	}
}
