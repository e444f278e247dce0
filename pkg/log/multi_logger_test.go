package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.events = append(r.events, e)
}

func TestMultiLoggerFansOutToEveryLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	multi := NewMultiLogger(a, b)

	event := Event{Category: CategoryGesture, RemoteID: "7"}
	multi.Log(event)

	assert.Equal(t, []Event{event}, a.events)
	assert.Equal(t, []Event{event}, b.events)
}

func TestMultiLoggerWithNoLoggersDoesNotPanic(t *testing.T) {
	multi := NewMultiLogger()
	assert.NotPanics(t, func() {
		multi.Log(Event{Category: CategoryFrame})
	})
}
