package connection

import "errors"

// Sentinel errors of the connection package. ConnectionManager.AwaitFrame
// returns ErrAuthentication and ErrEmptyMessage to its caller. Errors not
// listed here (BadAddress, ConnectTimeout, LivenessError, ParseError) are
// handled internally by reconnecting or discarding a line; they never reach
// a caller.
var (
	// ErrAuthentication means the login handshake did not reach the
	// logged-in banner in the expected sequence. Fatal; the caller should
	// terminate the process.
	ErrAuthentication = errors.New("connection: authentication failed")

	// ErrEmptyMessage is returned by AwaitFrame when a blank line was read
	// (commonly the keep-alive ack). No frame is produced; the caller takes
	// no special action beyond calling AwaitFrame again.
	ErrEmptyMessage = errors.New("connection: empty message")

	// ErrClosed is returned by the internal line reader when no connection
	// is current (after Close or a teardown). AwaitFrame treats it like any
	// other read failure and redials; it never reaches AwaitFrame's caller.
	ErrClosed = errors.New("connection: closed")
)
