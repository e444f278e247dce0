package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	corelog "github.com/dkulla01/caseta-listener/pkg/log"
)

var (
	logsRemoteID string
	logsRoomID   string
	logsCategory string
)

var logsCmd = &cobra.Command{
	Use:   "logs <path>",
	Short: "Print events from a --protocol-log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogs(cmd.OutOrStdout(), args[0], logsRemoteID, logsRoomID, logsCategory)
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsRemoteID, "remote-id", "", "only show events for this remote ID")
	logsCmd.Flags().StringVar(&logsRoomID, "room-id", "", "only show events for this room ID")
	logsCmd.Flags().StringVar(&logsCategory, "category", "", "only show events in this category: frame, gesture, state, dispatch, error")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(w io.Writer, path, remoteID, roomID, category string) error {
	filter := corelog.Filter{RemoteID: remoteID, RoomID: roomID}
	if category != "" {
		cat, err := parseLogCategory(category)
		if err != nil {
			return err
		}
		filter.Category = &cat
	}

	reader, err := corelog.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("logs: opening %s: %w", path, err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("logs: reading %s: %w", path, err)
		}
		formatLogEvent(w, event)
	}
}

func parseLogCategory(s string) (corelog.Category, error) {
	switch s {
	case "frame":
		return corelog.CategoryFrame, nil
	case "gesture":
		return corelog.CategoryGesture, nil
	case "state":
		return corelog.CategoryState, nil
	case "dispatch":
		return corelog.CategoryDispatch, nil
	case "error":
		return corelog.CategoryError, nil
	default:
		return 0, fmt.Errorf("logs: unknown category %q", s)
	}
}

// formatLogEvent writes one human-readable line per event, with a detail
// line for whichever payload is set.
func formatLogEvent(w io.Writer, event corelog.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, event.ConnectionID, event.Direction, event.Layer, event.Category)

	switch {
	case event.Frame != nil:
		fmt.Fprintf(w, "  remote=%s kind=%s raw=%q\n", event.RemoteID, event.Frame.Kind, event.Frame.Raw)
	case event.Gesture != nil:
		fmt.Fprintf(w, "  remote=%s button=%s action=%s\n", event.RemoteID, event.Gesture.ButtonID, event.Gesture.Action)
	case event.StateChange != nil:
		fmt.Fprintf(w, "  remote=%s %s -> %s reason=%s\n", event.RemoteID, event.StateChange.OldState, event.StateChange.NewState, event.StateChange.Reason)
	case event.Dispatch != nil:
		fmt.Fprintf(w, "  room=%s verb=%s target=%s succeeded=%t\n", event.RoomID, event.Dispatch.Verb, event.Dispatch.TargetUUID, event.Dispatch.Succeeded)
	case event.Error != nil:
		fmt.Fprintf(w, "  context=%s message=%s\n", event.Error.Context, event.Error.Message)
	}
}
