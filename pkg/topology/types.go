package topology

import "fmt"

// RemoteID identifies a physical remote, assigned by the hub. Valid range
// is 1..255; 0 is never assigned and is used as a zero-value sentinel.
type RemoteID uint8

// ButtonID names a button on a remote. The hub reports these as integers;
// FromWireButtonID converts the wire encoding to this type.
type ButtonID uint8

const (
	ButtonUnknown ButtonID = iota
	ButtonPowerOn
	ButtonFavorite
	ButtonPowerOff
	ButtonUp
	ButtonDown
)

// String returns the button's name.
func (b ButtonID) String() string {
	switch b {
	case ButtonPowerOn:
		return "PowerOn"
	case ButtonFavorite:
		return "Favorite"
	case ButtonPowerOff:
		return "PowerOff"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// FromWireButtonID maps the hub's wire-encoded button_id to a ButtonID.
// The canonical mapping is 2→PowerOn, 3→Favorite, 4→PowerOff, 5→Up, 6→Down.
func FromWireButtonID(wire uint8) (ButtonID, bool) {
	switch wire {
	case 2:
		return ButtonPowerOn, true
	case 3:
		return ButtonFavorite, true
	case 4:
		return ButtonPowerOff, true
	case 5:
		return ButtonUp, true
	case 6:
		return ButtonDown, true
	default:
		return ButtonUnknown, false
	}
}

// ButtonAction is Press or Release.
type ButtonAction uint8

const (
	ActionUnknown ButtonAction = iota
	ActionPress
	ActionRelease
)

// String returns the action's name.
func (a ButtonAction) String() string {
	switch a {
	case ActionPress:
		return "Press"
	case ActionRelease:
		return "Release"
	default:
		return "Unknown"
	}
}

// FromWireButtonAction maps the hub's wire-encoded action_id to a ButtonAction.
// The mapping is 3→Press, 4→Release.
func FromWireButtonAction(wire uint8) (ButtonAction, bool) {
	switch wire {
	case 3:
		return ActionPress, true
	case 4:
		return ActionRelease, true
	default:
		return ActionUnknown, false
	}
}

// RemoteKindTag distinguishes the two physical remote form factors.
type RemoteKindTag uint8

const (
	TwoButtonPico RemoteKindTag = iota
	FiveButtonPico
)

// String returns the kind's name.
func (k RemoteKindTag) String() string {
	switch k {
	case TwoButtonPico:
		return "TwoButtonPico"
	case FiveButtonPico:
		return "FiveButtonPico"
	default:
		return "Unknown"
	}
}

// RemoteKind carries a remote's form factor alongside its human name.
type RemoteKind struct {
	Tag  RemoteKindTag
	Name string
}

// ValidButton reports whether b is a legal button for this remote kind.
// A TwoButtonPico only has PowerOn and PowerOff; a FiveButtonPico has all five.
func (k RemoteKind) ValidButton(b ButtonID) bool {
	if k.Tag == TwoButtonPico {
		return b == ButtonPowerOn || b == ButtonPowerOff
	}
	return b != ButtonUnknown
}

// DeviceKind tags the variants of Device.
type DeviceKind uint8

const (
	DeviceHueScene DeviceKind = iota
	DeviceNanoleafLightPanels
	DeviceWemoOutlet
)

// ColorSetting describes a static light appearance, carried on inert
// (non-HueScene) device variants for completeness. Never acted on by the
// dispatcher.
type ColorSetting struct {
	// X, Y are CIE 1931 xy chromaticity coordinates, when set.
	X, Y float64
	// Effect names a vendor-specific effect (e.g. "flowing"), when set
	// instead of an xy coordinate.
	Effect string
}

// Device is a tagged union of the device kinds a Scene can reference. Only
// HueScene is behaviorally significant to the dispatcher; the others are
// parsed and logged but never acted on.
type Device struct {
	Kind DeviceKind

	// UUID is set for HueScene; Name is set for every kind.
	UUID string
	Name string

	// NanoleafLightPanels / WemoOutlet fields.
	On     bool
	Color  *ColorSetting // NanoleafLightPanels only
}

func (d Device) String() string {
	switch d.Kind {
	case DeviceHueScene:
		return fmt.Sprintf("HueScene{%s,%s}", d.UUID, d.Name)
	case DeviceNanoleafLightPanels:
		return fmt.Sprintf("NanoleafLightPanels{%s,on=%t}", d.Name, d.On)
	case DeviceWemoOutlet:
		return fmt.Sprintf("WemoOutlet{%s,on=%t}", d.Name, d.On)
	default:
		return "Device{unknown}"
	}
}

// Scene is a named, ordered sequence of devices recalled together.
type Scene struct {
	Name    string
	Devices []Device
}

// RoomConfig describes one controllable room: its lighting API identity,
// its scene rotation, and which remotes control it.
type RoomConfig struct {
	RoomID         string // opaque UUID
	GroupedLightID string // opaque UUID
	DisplayName    string
	Scenes         []Scene // non-empty by configuration invariant
	Remotes        map[RemoteID]struct{}
}

// Topology maps every configured remote to its kind and the room it
// controls. Constructed once at startup; read-only thereafter.
type Topology struct {
	remotes map[RemoteID]remoteEntry
}

type remoteEntry struct {
	kind RemoteKind
	room *RoomConfig
}

// NewTopology builds a Topology from a remote-kind map and a list of rooms.
// Each room's Remotes set is resolved against kinds; a RemoteID with no
// entry in kinds is an error.
func NewTopology(kinds map[RemoteID]RemoteKind, rooms []RoomConfig) (*Topology, error) {
	t := &Topology{remotes: make(map[RemoteID]remoteEntry)}
	for i := range rooms {
		room := &rooms[i]
		for rid := range room.Remotes {
			kind, ok := kinds[rid]
			if !ok {
				return nil, fmt.Errorf("topology: remote %d referenced by room %q has no configured kind", rid, room.DisplayName)
			}
			if _, dup := t.remotes[rid]; dup {
				return nil, fmt.Errorf("topology: remote %d maps to more than one room", rid)
			}
			t.remotes[rid] = remoteEntry{kind: kind, room: room}
		}
	}
	return t, nil
}

// Lookup returns the kind and room controlled by remote, or ok=false if the
// remote is not part of the topology.
func (t *Topology) Lookup(remote RemoteID) (RemoteKind, *RoomConfig, bool) {
	e, ok := t.remotes[remote]
	if !ok {
		return RemoteKind{}, nil, false
	}
	return e.kind, e.room, true
}
