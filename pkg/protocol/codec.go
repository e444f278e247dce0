package protocol

import (
	"strconv"
	"strings"

	"github.com/dkulla01/caseta-listener/pkg/topology"
)

const (
	loginPromptPrefix    = "login: "
	passwordPromptPrefix = "password: "
	loggedInPrefix       = "GNET>"
	buttonEventPrefix    = "~DEVICE,"
)

// Parse recognizes prefixes (case-sensitive, matched at line start after
// stripping surrounding whitespace) and returns the corresponding Frame, or
// a *ParseError if line matches no recognized grammar.
func Parse(line string) (Frame, error) {
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, loginPromptPrefix):
		return Frame{Kind: FrameLoginPrompt}, nil
	case strings.HasPrefix(trimmed, passwordPromptPrefix):
		return Frame{Kind: FramePasswordPrompt}, nil
	case strings.HasPrefix(trimmed, loggedInPrefix):
		return Frame{Kind: FrameLoggedIn}, nil
	case strings.HasPrefix(trimmed, buttonEventPrefix):
		return parseButtonEvent(trimmed)
	default:
		return Frame{}, &ParseError{Line: line, Reason: "no recognized prefix"}
	}
}

func parseButtonEvent(line string) (Frame, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return Frame{}, &ParseError{Line: line, Reason: "expected at least 4 comma-separated fields"}
	}

	remote, err := parseUint8Field(fields[1])
	if err != nil {
		return Frame{}, &ParseError{Line: line, Reason: "bad remote_id: " + err.Error()}
	}

	wireButton, err := parseUint8Field(fields[2])
	if err != nil {
		return Frame{}, &ParseError{Line: line, Reason: "bad button_id: " + err.Error()}
	}
	button, ok := topology.FromWireButtonID(wireButton)
	if !ok {
		return Frame{}, &ParseError{Line: line, Reason: "unknown button_id " + fields[2]}
	}

	wireAction, err := parseUint8Field(fields[3])
	if err != nil {
		return Frame{}, &ParseError{Line: line, Reason: "bad action_id: " + err.Error()}
	}
	action, ok := topology.FromWireButtonAction(wireAction)
	if !ok {
		return Frame{}, &ParseError{Line: line, Reason: "unknown action_id " + fields[3]}
	}

	return Frame{
		Kind:     FrameButtonEvent,
		RemoteID: topology.RemoteID(remote),
		ButtonID: button,
		Action:   action,
	}, nil
}

// ToWireButtonID is the inverse of topology.FromWireButtonID.
func ToWireButtonID(b topology.ButtonID) uint8 {
	switch b {
	case topology.ButtonPowerOn:
		return 2
	case topology.ButtonFavorite:
		return 3
	case topology.ButtonPowerOff:
		return 4
	case topology.ButtonUp:
		return 5
	case topology.ButtonDown:
		return 6
	default:
		return 0
	}
}

// ToWireButtonAction is the inverse of topology.FromWireButtonAction.
func ToWireButtonAction(a topology.ButtonAction) uint8 {
	switch a {
	case topology.ActionPress:
		return 3
	case topology.ActionRelease:
		return 4
	default:
		return 0
	}
}

// EncodeButtonEvent renders the wire line the hub would send for the given
// button event, CRLF-terminated. Used by tests to exercise the codec's
// round-trip property.
func EncodeButtonEvent(remote topology.RemoteID, button topology.ButtonID, action topology.ButtonAction) string {
	return "~DEVICE," +
		strconv.Itoa(int(remote)) + "," +
		strconv.Itoa(int(ToWireButtonID(button))) + "," +
		strconv.Itoa(int(ToWireButtonAction(action))) + "\r\n"
}

func parseUint8Field(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}
