package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkulla01/caseta-listener/pkg/gesture"
	"github.com/dkulla01/caseta-listener/pkg/roomcache"
	"github.com/dkulla01/caseta-listener/pkg/topology"
)

type call struct {
	verb       string
	uuid       string
	brightness *float64
}

type fakeClient struct {
	mu    sync.Mutex
	calls []call

	groupedLight GroupedLight
	turnOnResult GroupedLight
	err          error
}

func (f *fakeClient) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeClient) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeClient) GetGroupedLight(_ context.Context, uuid string) (GroupedLight, error) {
	f.record(call{verb: "get", uuid: uuid})
	return f.groupedLight, f.err
}

func (f *fakeClient) TurnOn(_ context.Context, uuid string) (GroupedLight, error) {
	f.record(call{verb: "turn_on", uuid: uuid})
	return f.turnOnResult, f.err
}

func (f *fakeClient) TurnOff(_ context.Context, uuid string) error {
	f.record(call{verb: "turn_off", uuid: uuid})
	return f.err
}

func (f *fakeClient) UpdateBrightness(_ context.Context, uuid string, brightness float64) error {
	f.record(call{verb: "update_brightness", uuid: uuid, brightness: &brightness})
	return f.err
}

func (f *fakeClient) RecallScene(_ context.Context, sceneUUID string, brightness *float64) error {
	f.record(call{verb: "recall_scene", uuid: sceneUUID, brightness: brightness})
	return f.err
}

func testTopology(t *testing.T, remote topology.RemoteID, kind topology.RemoteKindTag, room topology.RoomConfig) *topology.Topology {
	t.Helper()
	room.Remotes = map[topology.RemoteID]struct{}{remote: {}}
	topo, err := topology.NewTopology(
		map[topology.RemoteID]topology.RemoteKind{remote: {Tag: kind}},
		[]topology.RoomConfig{room},
	)
	require.NoError(t, err)
	return topo
}

func float(v float64) *float64 { return &v }

func newTestDispatcher(t *testing.T, topo *topology.Topology, client LightingClient) (*Dispatcher, *roomcache.Cache) {
	t.Helper()
	cache, err := roomcache.New()
	require.NoError(t, err)
	t.Cleanup(cache.Close)
	return New(topo, cache, client, nil), cache
}

// S4: PowerOn single press on an off room turns the light on and caches
// the API-reported brightness.
func TestDispatchPowerOnFromOff(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{turnOnResult: GroupedLight{On: true, Brightness: 42.3}}
	d, cache := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonPowerOn})

	calls := client.Calls()
	require.Len(t, calls, 2) // get_grouped_light (miss) then turn_on
	assert.Equal(t, "turn_on", calls[1].verb)

	cache.Wait()
	state, ok := cache.Get("room-1")
	require.True(t, ok)
	assert.True(t, state.On)
	require.NotNil(t, state.Brightness)
	assert.Equal(t, 42.3, *state.Brightness)
}

func TestDispatchPowerOnNoEffectWhenAlreadyOn(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 60}}
	d, _ := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonPowerOn})

	calls := client.Calls()
	require.Len(t, calls, 1) // only the cache-miss get, no turn_on
	assert.Equal(t, "get", calls[0].verb)
}

// R1: turning off twice yields the same cache state as once.
func TestDispatchPowerOffIdempotent(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 60}}
	d, cache := newTestDispatcher(t, topo, client)

	msg := gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonPowerOff}
	d.handle(context.Background(), msg)
	cache.Wait()
	first, _ := cache.Get("room-1")

	d.handle(context.Background(), msg)
	cache.Wait()
	second, _ := cache.Get("room-1")

	assert.Equal(t, first, second)
	assert.False(t, second.On)
	assert.Nil(t, second.Brightness)
}

func TestDispatchBrightnessUpSingleStep(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 42.3}}
	d, cache := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonUp})
	cache.Wait()

	calls := client.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "update_brightness", calls[1].verb)
	assert.Equal(t, 45.0, *calls[1].brightness)

	state, _ := cache.Get("room-1")
	assert.Equal(t, 45.0, *state.Brightness)
}

func TestDispatchBrightnessDoublePressTwoSteps(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 50}}
	d, _ := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.DoublePressComplete, RemoteID: 7, ButtonID: topology.ButtonDown})

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 40.0, *calls[1].brightness) // 50 -> 45 -> 40
}

func TestDispatchBrightnessNoEffectWhenOff(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s1"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: false}}
	d, _ := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonUp})

	calls := client.Calls()
	require.Len(t, calls, 1) // only the get
}

func TestDispatchFavoriteSinglePressRotatesForward(t *testing.T) {
	room := topology.RoomConfig{
		RoomID: "room-1", GroupedLightID: "gl-1",
		Scenes: []topology.Scene{
			{Name: "s0", Devices: []topology.Device{{Kind: topology.DeviceHueScene, UUID: "scene-0"}}},
			{Name: "s1", Devices: []topology.Device{{Kind: topology.DeviceHueScene, UUID: "scene-1"}}},
		},
	}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 70}}
	d, cache := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonFavorite})
	cache.Wait()

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "recall_scene", calls[1].verb)
	assert.Equal(t, "scene-1", calls[1].uuid)
	assert.Equal(t, 70.0, *calls[1].brightness)

	state, _ := cache.Get("room-1")
	require.NotNil(t, state.ActiveScene)
	assert.Equal(t, "s1", state.ActiveScene.Name)
}

// S3: double press favorite with 2 scenes, currently scene[0], rotates backward (to the last scene).
func TestDispatchFavoriteDoublePressRotatesBackward(t *testing.T) {
	room := topology.RoomConfig{
		RoomID: "room-1", GroupedLightID: "gl-1",
		Scenes: []topology.Scene{
			{Name: "s0", Devices: []topology.Device{{Kind: topology.DeviceHueScene, UUID: "scene-0"}}},
			{Name: "s1", Devices: []topology.Device{{Kind: topology.DeviceHueScene, UUID: "scene-1"}}},
		},
	}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 70}}
	d, cache := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.DoublePressComplete, RemoteID: 7, ButtonID: topology.ButtonFavorite})
	cache.Wait()

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "scene-1", calls[1].uuid) // (0-1 mod 2) = 1

	state, _ := cache.Get("room-1")
	assert.Equal(t, "s1", state.ActiveScene.Name)
}

func TestDispatchTwoButtonPicoRejectsNonPowerButtons(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s0"}}}
	topo := testTopology(t, 12, topology.TwoButtonPico, room)
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 12, ButtonID: topology.ButtonUp})

	assert.Empty(t, client.Calls())
}

func TestDispatchUnknownRemoteIsDropped(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s0"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, topo, client)

	d.handle(context.Background(), gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 99, ButtonID: topology.ButtonUp})

	assert.Empty(t, client.Calls())
}

func TestRunProcessesMessagesConcurrently(t *testing.T) {
	room := topology.RoomConfig{RoomID: "room-1", GroupedLightID: "gl-1", Scenes: []topology.Scene{{Name: "s0"}}}
	topo := testTopology(t, 7, topology.FiveButtonPico, room)
	client := &fakeClient{groupedLight: GroupedLight{On: true, Brightness: 50}}
	d, _ := newTestDispatcher(t, topo, client)

	messages := make(chan gesture.ActionMessage, 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx, messages)
		close(done)
	}()

	messages <- gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonUp}
	messages <- gesture.ActionMessage{Action: gesture.SinglePressComplete, RemoteID: 7, ButtonID: topology.ButtonDown}

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.GreaterOrEqual(t, len(client.Calls()), 2)
}
