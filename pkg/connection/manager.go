package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	corelog "github.com/dkulla01/caseta-listener/pkg/log"
	"github.com/dkulla01/caseta-listener/pkg/protocol"
)

// Config holds the manager's connect and keep-alive timing. Defaults match
// the spec; tests may substitute shorter windows.
type Config struct {
	// ConnectTimeout bounds both the TCP dial and the login handshake.
	ConnectTimeout time.Duration
	// KeepAliveInterval is the cadence of the bare "\r\n" keep-alive write.
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the timing specified for hub connections.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:    10 * time.Second,
		KeepAliveInterval: 60 * time.Second,
	}
}

// Credentials identifies the hub to dial and the login handshake values.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
}

// ConnectionManager owns one telnet session to the hub: dialing, the login
// handshake, a 60s keep-alive, and transparent reconnection on liveness loss
// (with backoff between failed dial or login attempts). AwaitFrame is the only method its caller needs; every
// recoverable error in the taxonomy (bad address, connect timeout, a dead
// connection, a malformed line) is absorbed here rather than surfaced.
type ConnectionManager struct {
	creds  Credentials
	cfg    Config
	logger corelog.Logger

	backoff *Backoff

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	connID int
}

// NewConnectionManager builds a ConnectionManager. logger may be nil, in
// which case events are discarded.
func NewConnectionManager(creds Credentials, cfg Config, logger corelog.Logger) *ConnectionManager {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &ConnectionManager{
		creds:   creds,
		cfg:     cfg,
		logger:  logger,
		backoff: NewBackoff(),
	}
}

// AwaitFrame blocks until a frame is parsed, the login handshake fails
// (ErrAuthentication, fatal), or ctx is canceled. Dial failures, a dead
// connection, and unparseable lines are retried internally and never
// returned to the caller.
func (m *ConnectionManager) AwaitFrame(ctx context.Context) (protocol.Frame, error) {
	for {
		if err := m.ensureConnected(ctx); err != nil {
			return protocol.Frame{}, err
		}
		m.mu.Lock()
		connID := m.connID
		m.mu.Unlock()

		line, err := m.readLine()
		if err != nil {
			if ctx.Err() != nil {
				return protocol.Frame{}, ctx.Err()
			}
			m.logLivenessError(err)
			m.teardownIfCurrent(connID)
			continue
		}

		if line == "" {
			return protocol.Frame{}, ErrEmptyMessage
		}

		frame, err := protocol.Parse(line)
		if err != nil {
			m.logParseError(line, err)
			continue
		}
		if frame.Kind == protocol.FrameLoggedIn {
			// The GNET> banner is only meaningful during login; login()
			// consumes the initial one itself, but the hub may repeat it
			// unprompted (e.g. after a keep-alive ack). Never surface it.
			continue
		}
		return frame, nil
	}
}

// Close releases the current connection, if any. The ConnectionManager
// does not support reuse after Close.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.reader = nil
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (m *ConnectionManager) ensureConnected(ctx context.Context) error {
	m.mu.Lock()
	connected := m.conn != nil
	m.mu.Unlock()
	if connected {
		return nil
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", m.address())
		cancel()
		if err != nil {
			m.logBadAddress(err)
			if waitErr := m.waitBackoff(ctx); waitErr != nil {
				return waitErr
			}
			continue
		}

		reader := bufio.NewReader(conn)
		if err := m.login(conn, reader); err != nil {
			conn.Close()
			if errors.Is(err, ErrAuthentication) {
				return err
			}
			m.logLivenessError(err)
			if waitErr := m.waitBackoff(ctx); waitErr != nil {
				return waitErr
			}
			continue
		}

		m.mu.Lock()
		m.conn = conn
		m.reader = reader
		m.connID++
		connID := m.connID
		m.mu.Unlock()
		m.backoff.Reset()

		go m.runKeepAlive(ctx, conn, connID)
		return nil
	}
}

func (m *ConnectionManager) address() string {
	return fmt.Sprintf("%s:%d", m.creds.Host, m.creds.Port)
}

// login performs the hub's login: / password: / GNET> handshake. Any
// deviation from that exact sequence is authentication failure, fatal to
// the whole manager.
func (m *ConnectionManager) login(conn net.Conn, reader *bufio.Reader) error {
	_ = conn.SetDeadline(time.Now().Add(m.cfg.ConnectTimeout))
	defer conn.SetDeadline(time.Time{})

	if err := m.expectPrompt(conn, reader, protocol.FrameLoginPrompt, m.creds.Username); err != nil {
		return err
	}
	if err := m.expectPrompt(conn, reader, protocol.FramePasswordPrompt, m.creds.Password); err != nil {
		return err
	}

	line, err := readLineFrom(reader)
	if err != nil {
		return err
	}
	frame, err := protocol.Parse(line)
	if err != nil || frame.Kind != protocol.FrameLoggedIn {
		return ErrAuthentication
	}
	return nil
}

func (m *ConnectionManager) expectPrompt(conn net.Conn, reader *bufio.Reader, want protocol.FrameKind, reply string) error {
	line, err := readLineFrom(reader)
	if err != nil {
		return err
	}
	frame, err := protocol.Parse(line)
	if err != nil || frame.Kind != want {
		return ErrAuthentication
	}
	_, err = fmt.Fprintf(conn, "%s\r\n", reply)
	return err
}

func (m *ConnectionManager) readLine() (string, error) {
	m.mu.Lock()
	reader := m.reader
	m.mu.Unlock()
	if reader == nil {
		return "", ErrClosed
	}
	return readLineFrom(reader)
}

// promptPrefixes are the hub's two interactive prompts and its logged-in
// banner. login:/password: have no trailing CRLF, so readLineFrom cannot
// wait for "\n" to recognize them; it returns as soon as the accumulated
// bytes match one. GNET> does send a trailing CRLF, which readLineFrom
// discards separately so it isn't mistaken for the next frame.
var promptPrefixes = []string{loginPromptText, passwordPromptText, loggedInText}

const (
	loginPromptText    = "login: "
	passwordPromptText = "password: "
	loggedInText       = "GNET>"
)

// readLineFrom reads one hub frame: either a CRLF-terminated line (the
// ButtonEvent and blank keep-alive-ack shape) or one of the un-terminated
// prompt/banner strings, whichever completes first.
func readLineFrom(r *bufio.Reader) (string, error) {
	var buf strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		buf.WriteByte(b)
		s := buf.String()

		if strings.HasSuffix(s, "\n") {
			return strings.TrimRight(s, "\r\n"), nil
		}
		for _, p := range promptPrefixes {
			if strings.HasPrefix(s, p) {
				discardBufferedCRLF(r)
				return s, nil
			}
		}
	}
}

// discardBufferedCRLF drops a "\r\n" immediately following a prompt/banner
// match, if the hub already sent it as part of the same write. It only
// inspects bytes bufio has already buffered and never issues a further read:
// login:/password: have no trailing CRLF pending, and GNET>'s trailing CRLF
// (see manager_test.go's fixtures) arrives in the same write as the banner
// itself, so this never blocks waiting for more data.
func discardBufferedCRLF(r *bufio.Reader) {
	if r.Buffered() < 2 {
		return
	}
	if peeked, err := r.Peek(2); err == nil && string(peeked) == "\r\n" {
		_, _ = r.Discard(2)
	}
}

// teardownIfCurrent drops the connection so the next ensureConnected call
// redials, but only if connID still names the live connection. Both the
// read path and the keep-alive goroutine hold a connID captured before their
// failing I/O call; without this guard, a keep-alive write failing against a
// connection that the read path has already replaced would tear down the
// replacement instead of the stale connection it actually observed.
func (m *ConnectionManager) teardownIfCurrent(connID int) {
	m.mu.Lock()
	if m.connID != connID {
		m.mu.Unlock()
		return
	}
	conn := m.conn
	m.conn = nil
	m.reader = nil
	m.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (m *ConnectionManager) waitBackoff(ctx context.Context) error {
	timer := time.NewTimer(m.backoff.Next())
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runKeepAlive writes a bare "\r\n" to conn every 60s for as long as conn
// remains the current connection (connID matches). A write failure means
// the connection is dead; it is torn down so the reader observes the
// failure and the next AwaitFrame call redials.
func (m *ConnectionManager) runKeepAlive(ctx context.Context, conn net.Conn, connID int) {
	ticker := time.NewTicker(m.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			current := m.connID
			m.mu.Unlock()
			if current != connID {
				return
			}
			if _, err := conn.Write([]byte("\r\n")); err != nil {
				m.logLivenessError(err)
				m.teardownIfCurrent(connID)
				return
			}
		}
	}
}

func (m *ConnectionManager) logBadAddress(err error) {
	m.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryError,
		Error: &corelog.ErrorEventData{Layer: corelog.LayerProtocol, Message: err.Error(), Context: "dial"},
	})
}

func (m *ConnectionManager) logLivenessError(err error) {
	m.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryError,
		Error: &corelog.ErrorEventData{Layer: corelog.LayerProtocol, Message: err.Error(), Context: "liveness"},
	})
}

func (m *ConnectionManager) logParseError(line string, err error) {
	m.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryError,
		Error: &corelog.ErrorEventData{Layer: corelog.LayerProtocol, Message: err.Error(), Context: "parse"},
	})
}

func (m *ConnectionManager) logEvent(e corelog.Event) {
	e.Timestamp = time.Now()
	m.logger.Log(e)
}
