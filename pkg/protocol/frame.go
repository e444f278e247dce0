package protocol

import "github.com/dkulla01/caseta-listener/pkg/topology"

// FrameKind tags the variants of Frame.
type FrameKind uint8

const (
	// FrameLoginPrompt is the hub's "login: " prompt.
	FrameLoginPrompt FrameKind = iota
	// FramePasswordPrompt is the hub's "password: " prompt.
	FramePasswordPrompt
	// FrameLoggedIn is the hub's "GNET>" interactive prompt, seen after a
	// successful login and as the reply to every keep-alive.
	FrameLoggedIn
	// FrameButtonEvent reports a remote's button press or release.
	FrameButtonEvent
)

// String returns the frame kind's name.
func (k FrameKind) String() string {
	switch k {
	case FrameLoginPrompt:
		return "LoginPrompt"
	case FramePasswordPrompt:
		return "PasswordPrompt"
	case FrameLoggedIn:
		return "LoggedIn"
	case FrameButtonEvent:
		return "ButtonEvent"
	default:
		return "Unknown"
	}
}

// Frame is the parsed representation of one line from the hub.
type Frame struct {
	Kind FrameKind

	// Populated only when Kind == FrameButtonEvent.
	RemoteID topology.RemoteID
	ButtonID topology.ButtonID
	Action   topology.ButtonAction
}

// ParseError reports a line that did not match any recognized grammar, or
// that matched a prefix but carried invalid fields.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return "protocol: unparseable line " + quote(e.Line) + ": " + e.Reason
}

func quote(s string) string {
	return "\"" + s + "\""
}
