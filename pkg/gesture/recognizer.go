package gesture

import (
	"context"
	"time"

	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// Action is a higher-level gesture derived from a sequence of raw
// Press/Release events within timing windows.
type Action uint8

const (
	// SinglePressComplete is emitted when exactly one press/release pair
	// was observed before the double-click window closed.
	SinglePressComplete Action = iota
	// DoublePressComplete is emitted once a second press/release pair is
	// observed; final once seen regardless of further rapid events.
	DoublePressComplete
	// LongPressStart is reserved in the vocabulary but never emitted by
	// this recognizer (see the design notes on this open question).
	LongPressStart
	// LongPressOngoing is emitted on every 500ms tick while a single press
	// remains held past the double-click window.
	LongPressOngoing
	// LongPressComplete is emitted when a held single press is released.
	LongPressComplete
)

// String returns the action's name.
func (a Action) String() string {
	switch a {
	case SinglePressComplete:
		return "SinglePressComplete"
	case DoublePressComplete:
		return "DoublePressComplete"
	case LongPressStart:
		return "LongPressStart"
	case LongPressOngoing:
		return "LongPressOngoing"
	case LongPressComplete:
		return "LongPressComplete"
	default:
		return "Unknown"
	}
}

// ActionMessage is what a recognizer emits onto the Dispatcher's channel.
type ActionMessage struct {
	Action   Action
	RemoteID topology.RemoteID
	ButtonID topology.ButtonID
}

// Config holds the recognizer's timing windows. Defaults match the spec;
// tests may substitute shorter windows to avoid real-time waits.
type Config struct {
	// DoubleClickWindow is how long the recognizer waits after the first
	// press before evaluating the gesture for the first time.
	DoubleClickWindow time.Duration
	// PollInterval is the cadence of subsequent state checks.
	PollInterval time.Duration
	// AbsoluteDeadline bounds the total lifetime of a recognizer task,
	// covering hub-dropped Release events during very long holds.
	AbsoluteDeadline time.Duration
}

// DefaultConfig returns the timing windows specified for gesture recognition.
func DefaultConfig() Config {
	return Config{
		DoubleClickWindow: 500 * time.Millisecond,
		PollInterval:      500 * time.Millisecond,
		AbsoluteDeadline:  5 * time.Second,
	}
}

// Run executes one recognizer task to completion: it polls rs on a timer,
// emits ActionMessages on actions as gestures resolve, and returns once the
// gesture is finished (either naturally or via the absolute deadline). The
// context, if canceled, aborts the task without marking rs finished (the
// caller is shutting down, not recognizing a gesture).
func Run(ctx context.Context, cfg Config, remote topology.RemoteID, rs *RemoteState, actions chan<- ActionMessage) {
	emit := func(a Action) {
		select {
		case actions <- ActionMessage{Action: a, RemoteID: remote, ButtonID: rs.WatchedButton()}:
		case <-ctx.Done():
		}
	}

	if !sleep(ctx, cfg.DoubleClickWindow) {
		return
	}

	state, _ := rs.Snapshot()
	switch state {
	case FirstPressAwaitingRelease:
		// long press in progress; fall through to the polling loop.
	case FirstPressAndFirstRelease:
		emit(SinglePressComplete)
		rs.MarkFinished()
		return
	case SecondPressAwaitingRelease:
		// still mid-double-click; fall through to the polling loop.
	case SecondPressAndSecondRelease:
		emit(DoublePressComplete)
		rs.MarkFinished()
		return
	}

	for {
		if pastDeadline(rs, cfg.AbsoluteDeadline) {
			rs.MarkFinished()
			return
		}
		if !sleep(ctx, cfg.PollInterval) {
			return
		}
		if pastDeadline(rs, cfg.AbsoluteDeadline) {
			rs.MarkFinished()
			return
		}

		state, _ := rs.Snapshot()
		switch state {
		case FirstPressAwaitingRelease:
			emit(LongPressOngoing)
		case FirstPressAndFirstRelease:
			emit(LongPressComplete)
			rs.MarkFinished()
			return
		case SecondPressAwaitingRelease:
			// no emission; still waiting on the second release.
		case SecondPressAndSecondRelease:
			emit(DoublePressComplete)
			rs.MarkFinished()
			return
		}
	}
}

func pastDeadline(rs *RemoteState, deadline time.Duration) bool {
	return time.Since(rs.TrackingStartedAt()) >= deadline
}

// sleep waits for d or ctx cancellation, returning false if canceled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
