// Package dispatch consumes recognized gestures and turns them into
// idempotent lighting-state mutations, guided by the static topology and
// the short-lived room-state cache.
package dispatch
