package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes bridge events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.RemoteID != "" {
		attrs = append(attrs, slog.String("remote_id", event.RemoteID))
	}
	if event.RoomID != "" {
		attrs = append(attrs, slog.String("room_id", event.RoomID))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs, slog.String("frame_kind", event.Frame.Kind))
		if event.Frame.ButtonID != "" {
			attrs = append(attrs,
				slog.String("button_id", event.Frame.ButtonID),
				slog.String("action", event.Frame.Action),
			)
		}
	case event.Gesture != nil:
		attrs = append(attrs,
			slog.String("button_id", event.Gesture.ButtonID),
			slog.String("gesture", event.Gesture.Action),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.String("verb", event.Dispatch.Verb),
			slog.String("target", event.Dispatch.TargetUUID),
			slog.Bool("succeeded", event.Dispatch.Succeeded),
		)
		if event.Dispatch.Brightness != nil {
			attrs = append(attrs, slog.Float64("brightness", *event.Dispatch.Brightness))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "bridge", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
