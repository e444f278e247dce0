package dispatch

import "context"

// LightingClient is the lighting API surface the Dispatcher needs.
// Implemented in cmd/bridge by an adapter over pkg/hueclient.Client; tests
// substitute a fake.
type LightingClient interface {
	GetGroupedLight(ctx context.Context, uuid string) (GroupedLight, error)
	TurnOn(ctx context.Context, uuid string) (GroupedLight, error)
	TurnOff(ctx context.Context, uuid string) error
	UpdateBrightness(ctx context.Context, uuid string, brightness float64) error
	RecallScene(ctx context.Context, sceneUUID string, brightness *float64) error
}

// GroupedLight mirrors hueclient.GroupedLight so this package does not
// import pkg/hueclient directly; the concrete adapter in cmd/bridge
// converts between the two.
type GroupedLight struct {
	On         bool
	Brightness float64
}
