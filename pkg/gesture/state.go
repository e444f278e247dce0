package gesture

import (
	"sync"
	"time"

	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// State is the finite set of press-counting states a recognizer tracks.
// There is no explicit "absent" member: a RemoteState is only constructed
// in response to a Press, which immediately enters FirstPressAwaitingRelease.
type State uint8

const (
	FirstPressAwaitingRelease State = iota
	FirstPressAndFirstRelease
	SecondPressAwaitingRelease
	SecondPressAndSecondRelease
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case FirstPressAwaitingRelease:
		return "FirstPressAwaitingRelease"
	case FirstPressAndFirstRelease:
		return "FirstPressAndFirstRelease"
	case SecondPressAwaitingRelease:
		return "SecondPressAwaitingRelease"
	case SecondPressAndSecondRelease:
		return "SecondPressAndSecondRelease"
	default:
		return "Unknown"
	}
}

// next applies the ingest transition table. Any (state, action) pair not
// listed here leaves the state unchanged.
func next(s State, action topology.ButtonAction) State {
	switch {
	case s == FirstPressAwaitingRelease && action == topology.ActionRelease:
		return FirstPressAndFirstRelease
	case s == FirstPressAndFirstRelease && action == topology.ActionPress:
		return SecondPressAwaitingRelease
	case s == SecondPressAwaitingRelease && action == topology.ActionRelease:
		return SecondPressAndSecondRelease
	default:
		return s
	}
}

// RemoteState is the shared cell a Router (writer, on every ButtonEvent)
// and a single Recognizer task (reader+writer, on each timer tick)
// cooperate over. Critical sections are O(1) and never suspend.
type RemoteState struct {
	mu sync.Mutex

	watchedButton     topology.ButtonID
	state             State
	trackingStartedAt time.Time
	finished          bool
}

// NewRemoteState creates a RemoteState for a gesture that has just started:
// a Press was observed on button with no prior active gesture on this remote.
func NewRemoteState(button topology.ButtonID, startedAt time.Time) *RemoteState {
	return &RemoteState{
		watchedButton:     button,
		state:             FirstPressAwaitingRelease,
		trackingStartedAt: startedAt,
	}
}

// WatchedButton returns the button this gesture's recognition is keyed on.
// Immutable after construction; safe to read without locking.
func (r *RemoteState) WatchedButton() topology.ButtonID {
	return r.watchedButton
}

// TrackingStartedAt returns when this RemoteState was created.
// Immutable after construction; safe to read without locking.
func (r *RemoteState) TrackingStartedAt() time.Time {
	return r.trackingStartedAt
}

// Ingest applies one button event to the state machine. Events on a button
// other than the watched one are ignored, tolerating the hub's
// misattribution of a second button's events onto the first.
func (r *RemoteState) Ingest(button topology.ButtonID, action topology.ButtonAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if button != r.watchedButton {
		return
	}
	r.state = next(r.state, action)
}

// Snapshot returns the current state and finished flag under lock.
func (r *RemoteState) Snapshot() (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.finished
}

// Finished reports whether the recognizer has completed this gesture.
func (r *RemoteState) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// MarkFinished sets the finished flag. Called only by the recognizer task.
func (r *RemoteState) MarkFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
}
