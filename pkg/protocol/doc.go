// Package protocol parses the hub's line-oriented ASCII telnet protocol
// into typed frames.
//
// The codec is pure and synchronous: it takes a line already split on
// CRLF and returns a Frame or a ParseError. It holds no state and performs
// no I/O; ConnectionManager owns reading lines off the socket.
package protocol
