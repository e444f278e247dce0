package config

// rawCredentials mirrors the credentials section of the config file.
// Decoded by viper, which also applies environment variable overrides.
type rawCredentials struct {
	HubHost                string `mapstructure:"hub_host"`
	HubPort                int    `mapstructure:"hub_port"`
	HubUsername            string `mapstructure:"hub_username"`
	HubPassword            string `mapstructure:"hub_password"`
	LightingHost           string `mapstructure:"lighting_host"`
	LightingApplicationKey string `mapstructure:"lighting_application_key"`
}

// rawRoot is the remotes/rooms half of the config file, decoded directly
// with yaml.v3 rather than through viper so the Device tagged union can be
// resolved by hand from a flat field set.
type rawRoot struct {
	Remotes []rawRemote `yaml:"remotes"`
	Rooms   []rawRoom   `yaml:"rooms"`
}

type rawRemote struct {
	ID   uint8  `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type rawRoom struct {
	Name           string     `yaml:"name"`
	RoomID         string     `yaml:"room_id"`
	GroupedLightID string     `yaml:"grouped_light_id"`
	Remotes        []uint8    `yaml:"remotes"`
	Scenes         []rawScene `yaml:"scenes"`
}

type rawScene struct {
	Name    string      `yaml:"name"`
	Devices []rawDevice `yaml:"devices"`
}

// rawDevice carries the union of every Device variant's fields; type
// selects which are meaningful. There is no UnmarshalYAML hook here — the
// conversion to topology.Device switches on Type by hand, the same way
// the teacher's YAML PICS parser resolves its per-item shape from a flat
// decoded value rather than a custom unmarshaler.
type rawDevice struct {
	Type   string `yaml:"type"`
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	On     bool   `yaml:"on"`
	Effect string `yaml:"effect"`
}
