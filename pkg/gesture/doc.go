// Package gesture recognizes higher-level button gestures (single press,
// double press, long press) from the raw Press/Release events the hub
// reports, one recognizer task per remote with an active gesture.
//
// The hub is known to mis-report input while a button is held: a second
// button's press-then-release on the same remote is reported as two extra
// events on the first (held) button, not as events on the second button.
// The ingest transition table below tolerates this by tracking only the
// button that started the gesture.
package gesture
