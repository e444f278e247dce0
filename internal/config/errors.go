package config

import "errors"

// ErrConfiguration wraps every configuration-loading failure: unreadable
// or unparseable YAML, a missing required credential, an unrecognized
// remote kind or device type, or a room with no scenes or no remotes.
// Fatal at startup.
var ErrConfiguration = errors.New("config: invalid configuration")
