package config

import (
	"github.com/dkulla01/caseta-listener/pkg/connection"
	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "caseta-listener.yaml"

// EnvPrefix namespaces environment variable overrides for the credentials
// section, e.g. CASETA_LISTENER_CREDENTIALS_HUB_HOST.
const EnvPrefix = "CASETA_LISTENER"

// Settings is the fully parsed configuration surface handed to cmd/bridge:
// hub and lighting credentials, plus the remote/room topology.
type Settings struct {
	Hub                    connection.Credentials
	LightingHost           string
	LightingApplicationKey string
	Topology               *topology.Topology
}
