package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dkulla01/caseta-listener/pkg/connection"
	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// Load reads and validates the configuration file at path, defaulting to
// DefaultConfigFile when path is empty. Credentials are decoded with viper
// so CASETA_LISTENER_-prefixed environment variables can override them;
// the remote/room topology is decoded directly from the file's YAML.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, path, err)
	}

	creds, err := loadCredentials(data)
	if err != nil {
		return nil, err
	}

	topo, err := loadTopology(data)
	if err != nil {
		return nil, err
	}

	return &Settings{
		Hub: connection.Credentials{
			Host:     creds.HubHost,
			Port:     creds.HubPort,
			Username: creds.HubUsername,
			Password: creds.HubPassword,
		},
		LightingHost:           creds.LightingHost,
		LightingApplicationKey: creds.LightingApplicationKey,
		Topology:               topo,
	}, nil
}

func loadCredentials(data []byte) (rawCredentials, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return rawCredentials{}, fmt.Errorf("%w: parsing config: %v", ErrConfiguration, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		"credentials.hub_host", "credentials.hub_port", "credentials.hub_username",
		"credentials.hub_password", "credentials.lighting_host", "credentials.lighting_application_key",
	} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("credentials.hub_port", 23)

	// Fetched one leaf key at a time: viper only consults a key's bound
	// environment variable when that exact key is looked up, not when a
	// parent key (e.g. "credentials") is fetched as a whole map.
	creds := rawCredentials{
		HubHost:                v.GetString("credentials.hub_host"),
		HubPort:                v.GetInt("credentials.hub_port"),
		HubUsername:            v.GetString("credentials.hub_username"),
		HubPassword:            v.GetString("credentials.hub_password"),
		LightingHost:           v.GetString("credentials.lighting_host"),
		LightingApplicationKey: v.GetString("credentials.lighting_application_key"),
	}

	if creds.HubHost == "" || creds.HubUsername == "" || creds.HubPassword == "" {
		return rawCredentials{}, fmt.Errorf("%w: credentials.hub_host, hub_username, and hub_password are required", ErrConfiguration)
	}
	if creds.LightingHost == "" || creds.LightingApplicationKey == "" {
		return rawCredentials{}, fmt.Errorf("%w: credentials.lighting_host and lighting_application_key are required", ErrConfiguration)
	}
	return creds, nil
}

func loadTopology(data []byte) (*topology.Topology, error) {
	var root rawRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: parsing remotes/rooms: %v", ErrConfiguration, err)
	}
	if len(root.Remotes) == 0 {
		return nil, fmt.Errorf("%w: no remotes configured", ErrConfiguration)
	}
	if len(root.Rooms) == 0 {
		return nil, fmt.Errorf("%w: no rooms configured", ErrConfiguration)
	}

	kinds := make(map[topology.RemoteID]topology.RemoteKind, len(root.Remotes))
	for _, r := range root.Remotes {
		tag, err := parseRemoteKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: remote %d: %v", ErrConfiguration, r.ID, err)
		}
		kinds[topology.RemoteID(r.ID)] = topology.RemoteKind{Tag: tag, Name: r.Name}
	}

	rooms := make([]topology.RoomConfig, 0, len(root.Rooms))
	for _, rr := range root.Rooms {
		room, err := convertRoom(rr)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	topo, err := topology.NewTopology(kinds, rooms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return topo, nil
}

func convertRoom(rr rawRoom) (topology.RoomConfig, error) {
	roomID, err := canonicalUUID(rr.RoomID)
	if err != nil {
		return topology.RoomConfig{}, fmt.Errorf("%w: room %q room_id: %v", ErrConfiguration, rr.Name, err)
	}
	groupedLightID, err := canonicalUUID(rr.GroupedLightID)
	if err != nil {
		return topology.RoomConfig{}, fmt.Errorf("%w: room %q grouped_light_id: %v", ErrConfiguration, rr.Name, err)
	}
	if len(rr.Remotes) == 0 {
		return topology.RoomConfig{}, fmt.Errorf("%w: room %q has no remotes", ErrConfiguration, rr.Name)
	}
	if len(rr.Scenes) == 0 {
		return topology.RoomConfig{}, fmt.Errorf("%w: room %q has no scenes", ErrConfiguration, rr.Name)
	}

	scenes := make([]topology.Scene, 0, len(rr.Scenes))
	for _, rs := range rr.Scenes {
		devices := make([]topology.Device, 0, len(rs.Devices))
		for _, rd := range rs.Devices {
			dev, err := convertDevice(rd)
			if err != nil {
				return topology.RoomConfig{}, fmt.Errorf("%w: room %q scene %q: %v", ErrConfiguration, rr.Name, rs.Name, err)
			}
			devices = append(devices, dev)
		}
		scenes = append(scenes, topology.Scene{Name: rs.Name, Devices: devices})
	}

	remotes := make(map[topology.RemoteID]struct{}, len(rr.Remotes))
	for _, id := range rr.Remotes {
		remotes[topology.RemoteID(id)] = struct{}{}
	}

	return topology.RoomConfig{
		RoomID:         roomID,
		GroupedLightID: groupedLightID,
		DisplayName:    rr.Name,
		Scenes:         scenes,
		Remotes:        remotes,
	}, nil
}

func parseRemoteKind(s string) (topology.RemoteKindTag, error) {
	switch s {
	case "two_button_pico":
		return topology.TwoButtonPico, nil
	case "five_button_pico":
		return topology.FiveButtonPico, nil
	default:
		return 0, fmt.Errorf("unrecognized remote kind %q", s)
	}
}

func convertDevice(rd rawDevice) (topology.Device, error) {
	switch rd.Type {
	case "hue_scene":
		id, err := canonicalUUID(rd.ID)
		if err != nil {
			return topology.Device{}, fmt.Errorf("hue_scene id: %w", err)
		}
		return topology.Device{Kind: topology.DeviceHueScene, UUID: id, Name: rd.Name}, nil
	case "wemo_outlet":
		return topology.Device{Kind: topology.DeviceWemoOutlet, Name: rd.Name, On: rd.On}, nil
	case "nanoleaf_light_panels":
		var color *topology.ColorSetting
		if rd.Effect != "" {
			color = &topology.ColorSetting{Effect: rd.Effect}
		}
		return topology.Device{Kind: topology.DeviceNanoleafLightPanels, Name: rd.Name, On: rd.On, Color: color}, nil
	default:
		return topology.Device{}, fmt.Errorf("unrecognized device type %q", rd.Type)
	}
}

func canonicalUUID(raw string) (string, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
