// Package roomcache holds a short-lived, capacity-bounded view of each
// room's last-known lighting state, so the dispatcher can avoid an API
// round trip for every gesture.
//
// Absence in the cache is never an authoritative "room is off" signal; it
// means "unknown, ask the API". Entries expire after 120s without a write or
// a read hit; a read hit refreshes the expiry, so an entry that keeps being
// read stays cached regardless of its age.
package roomcache
