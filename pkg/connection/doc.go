// Package connection manages the telnet session to the lighting hub:
// dialing, login handshake, keep-alive, and automatic reconnection.
//
// This package handles:
//   - Exponential backoff for reconnection attempts
//   - Jitter to prevent thundering herd against a single hub
//   - A per-session connection ID, so a stale keep-alive cannot tear down
//     the session that replaced it
//   - Automatic reconnection on connection loss
//
// # Reconnection Strategy
//
// When the hub connection is lost, the next AwaitFrame call redials at once.
// When a dial or login attempt fails, the client waits with exponential
// backoff before the next attempt:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
// To prevent thundering herd on hub reboot:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Success criteria
//
// A reconnection is successful once the hub's login and password prompts
// have both been satisfied and the "login successful" banner is observed.
package connection
