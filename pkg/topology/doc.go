// Package topology defines the static configuration graph the bridge is
// built around: remotes, rooms, scenes, and the mapping between them.
//
// Everything in this package is constructed once at startup and shared
// read-only for the lifetime of the process; nothing here is mutated after
// load.
package topology
