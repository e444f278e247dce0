package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvents(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.cbor")
	fl, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		fl.Log(e)
	}
	require.NoError(t, fl.Close())
	return path
}

func TestFilterMatchesConnectionIDDirectionLayerCategory(t *testing.T) {
	dirIn := DirectionIn
	layerGesture := LayerGesture
	catState := CategoryState

	event := Event{
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerGesture,
		Category:     CategoryState,
	}

	f := Filter{ConnectionID: "conn-1", Direction: &dirIn, Layer: &layerGesture, Category: &catState}
	assert.True(t, f.matches(event))

	f.ConnectionID = "conn-2"
	assert.False(t, f.matches(event))
}

func TestFilterMatchesTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	event := Event{Timestamp: base}

	start := base.Add(-time.Minute)
	end := base.Add(time.Minute)
	f := Filter{TimeStart: &start, TimeEnd: &end}
	assert.True(t, f.matches(event))

	afterEnd := base.Add(-2 * time.Minute)
	f = Filter{TimeEnd: &afterEnd}
	assert.False(t, f.matches(event))

	afterStart := base.Add(time.Minute)
	f = Filter{TimeStart: &afterStart}
	assert.False(t, f.matches(event))
}

func TestFilterMatchesRemoteAndRoomID(t *testing.T) {
	event := Event{RemoteID: "7", RoomID: "room-1"}

	f := Filter{RemoteID: "7"}
	assert.True(t, f.matches(event))
	f = Filter{RemoteID: "8"}
	assert.False(t, f.matches(event))

	f = Filter{RoomID: "room-1"}
	assert.True(t, f.matches(event))
	f = Filter{RoomID: "room-2"}
	assert.False(t, f.matches(event))
}

func TestReaderNextReturnsEOFWhenExhausted(t *testing.T) {
	path := writeEvents(t, Event{Category: CategoryFrame})

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.NoError(t, err)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewFilteredReaderSkipsNonMatchingEvents(t *testing.T) {
	path := writeEvents(t,
		Event{Category: CategoryFrame, RemoteID: "7"},
		Event{Category: CategoryGesture, RemoteID: "9"},
		Event{Category: CategoryGesture, RemoteID: "7"},
	)

	reader, err := NewFilteredReader(path, Filter{RemoteID: "7"})
	require.NoError(t, err)
	defer reader.Close()

	first, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, CategoryFrame, first.Category)

	second, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, CategoryGesture, second.Category)
	assert.Equal(t, "7", second.RemoteID)

	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewReaderMissingFileReturnsError(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.cbor"))
	assert.Error(t, err)
}
