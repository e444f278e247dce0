// Package config loads the bridge's configuration surface: hub and
// lighting credentials plus the remote/room topology, read from a YAML
// file with environment variable overrides for the credentials section.
package config
