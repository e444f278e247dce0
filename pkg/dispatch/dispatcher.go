package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/dkulla01/caseta-listener/pkg/gesture"
	corelog "github.com/dkulla01/caseta-listener/pkg/log"
	"github.com/dkulla01/caseta-listener/pkg/roomcache"
	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// Dispatcher is the single task that reads recognized gestures in FIFO
// order and issues the corresponding lighting API calls. Each message is
// handled on its own goroutine so a slow HTTP call never stalls the next
// message; ordering within a single remote is preserved upstream by the
// router (one gesture finishes before the next begins on that remote).
type Dispatcher struct {
	topo   *topology.Topology
	cache  *roomcache.Cache
	client LightingClient
	logger corelog.Logger
}

// New builds a Dispatcher. logger may be nil, in which case events are
// discarded.
func New(topo *topology.Topology, cache *roomcache.Cache, client LightingClient, logger corelog.Logger) *Dispatcher {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &Dispatcher{topo: topo, cache: cache, client: client, logger: logger}
}

// Run consumes messages until ctx is canceled or messages is closed,
// waiting for any in-flight handlers to finish before returning.
func (d *Dispatcher) Run(ctx context.Context, messages <-chan gesture.ActionMessage) {
	var wg conc.WaitGroup
	defer func() {
		if r := wg.WaitAndRecover(); r != nil {
			d.logEvent(corelog.Event{
				Layer: corelog.LayerDispatch, Category: corelog.CategoryError,
				Error: &corelog.ErrorEventData{Layer: corelog.LayerDispatch, Message: fmt.Sprintf("%v", r), Context: "handler panic"},
			})
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			m := msg
			wg.Go(func() { d.handle(ctx, m) })
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg gesture.ActionMessage) {
	kind, room, ok := d.topo.Lookup(msg.RemoteID)
	if !ok {
		d.logDrop(msg, "no topology entry for remote")
		return
	}
	if !kind.ValidButton(msg.ButtonID) {
		d.logDrop(msg, "button not valid for remote kind "+kind.Tag.String())
		return
	}

	state, err := d.currentState(ctx, room)
	if err != nil {
		d.logError(msg, err, "fetching current room state")
		return
	}

	switch msg.ButtonID {
	case topology.ButtonPowerOn:
		d.dispatchPowerOn(ctx, room, state, msg)
	case topology.ButtonPowerOff:
		d.dispatchPowerOff(ctx, room, state, msg)
	case topology.ButtonUp:
		d.dispatchBrightness(ctx, room, state, msg, +1)
	case topology.ButtonDown:
		d.dispatchBrightness(ctx, room, state, msg, -1)
	case topology.ButtonFavorite:
		d.dispatchFavorite(ctx, room, state, msg)
	default:
		d.logDrop(msg, "unrecognized button")
	}
}

func (d *Dispatcher) currentState(ctx context.Context, room *topology.RoomConfig) (roomcache.RoomState, error) {
	if state, ok := d.cache.Get(room.RoomID); ok {
		return state, nil
	}
	light, err := d.client.GetGroupedLight(ctx, room.GroupedLightID)
	if err != nil {
		return roomcache.RoomState{}, err
	}
	state := roomcache.RoomState{On: light.On}
	if light.On {
		b := light.Brightness
		state.Brightness = &b
	}
	return state, nil
}

func (d *Dispatcher) dispatchPowerOn(ctx context.Context, room *topology.RoomConfig, state roomcache.RoomState, msg gesture.ActionMessage) {
	if msg.Action != gesture.SinglePressComplete || state.On {
		return
	}
	light, err := d.client.TurnOn(ctx, room.GroupedLightID)
	if err != nil {
		d.logError(msg, err, "turn_on")
		return
	}
	b := light.Brightness
	next := state
	next.On = true
	next.Brightness = &b
	d.cache.Set(room.RoomID, next)
	d.logDispatch(msg, "turn_on", room.GroupedLightID, &b, true)
}

func (d *Dispatcher) dispatchPowerOff(ctx context.Context, room *topology.RoomConfig, state roomcache.RoomState, msg gesture.ActionMessage) {
	switch msg.Action {
	case gesture.SinglePressComplete, gesture.DoublePressComplete, gesture.LongPressComplete:
	default:
		return
	}
	if err := d.client.TurnOff(ctx, room.GroupedLightID); err != nil {
		d.logError(msg, err, "turn_off")
		return
	}
	next := state
	next.On = false
	next.Brightness = nil
	d.cache.Set(room.RoomID, next)
	d.logDispatch(msg, "turn_off", room.GroupedLightID, nil, true)
}

func (d *Dispatcher) dispatchBrightness(ctx context.Context, room *topology.RoomConfig, state roomcache.RoomState, msg gesture.ActionMessage, dir int) {
	if !state.On {
		return
	}

	var steps int
	switch msg.Action {
	case gesture.SinglePressComplete, gesture.LongPressStart, gesture.LongPressOngoing:
		steps = 1
	case gesture.DoublePressComplete:
		steps = 2
	default:
		return // LongPressComplete: no effect.
	}

	current := brightnessMin
	if state.Brightness != nil {
		current = *state.Brightness
	}
	newBrightness := current
	for i := 0; i < steps; i++ {
		newBrightness = nextBrightness(newBrightness, dir)
	}

	if err := d.client.UpdateBrightness(ctx, room.GroupedLightID, newBrightness); err != nil {
		d.logError(msg, err, "update_brightness")
		return
	}
	next := state
	next.Brightness = &newBrightness
	d.cache.Set(room.RoomID, next)
	d.logDispatch(msg, "update_brightness", room.GroupedLightID, &newBrightness, true)
}

func (d *Dispatcher) dispatchFavorite(ctx context.Context, room *topology.RoomConfig, state roomcache.RoomState, msg gesture.ActionMessage) {
	if !state.On {
		return
	}
	if state.Brightness == nil {
		d.logError(msg, nil, "invariant violation: room on but brightness absent")
		return
	}

	n := len(room.Scenes)
	currentIdx := 0
	if state.ActiveScene != nil {
		for i, s := range room.Scenes {
			if s.Name == state.ActiveScene.Name {
				currentIdx = i
				break
			}
		}
	}

	var targetIdx int
	switch msg.Action {
	case gesture.SinglePressComplete:
		targetIdx = sceneIndexForward(currentIdx, n)
	case gesture.DoublePressComplete:
		targetIdx = sceneIndexBackward(currentIdx, n)
	case gesture.LongPressComplete:
		targetIdx = 0
	default:
		return // LongPressStart | LongPressOngoing: no effect.
	}

	target := room.Scenes[targetIdx]
	brightness := *state.Brightness
	failed := false
	for _, device := range target.Devices {
		if device.Kind != topology.DeviceHueScene {
			continue // acknowledged but not acted on.
		}
		if err := d.client.RecallScene(ctx, device.UUID, &brightness); err != nil {
			d.logError(msg, err, "recall_scene")
			failed = true
			continue
		}
		d.logDispatch(msg, "recall_scene", device.UUID, &brightness, true)
	}
	if failed {
		return
	}

	next := state
	next.ActiveScene = &target
	d.cache.Set(room.RoomID, next)
}

func (d *Dispatcher) logDrop(msg gesture.ActionMessage, reason string) {
	d.logEvent(corelog.Event{
		Layer: corelog.LayerDispatch, Category: corelog.CategoryError,
		RemoteID: remoteIDString(msg.RemoteID),
		Error:    &corelog.ErrorEventData{Layer: corelog.LayerDispatch, Message: reason, Context: msg.ButtonID.String()},
	})
}

func (d *Dispatcher) logError(msg gesture.ActionMessage, err error, context string) {
	message := context
	if err != nil {
		message = err.Error()
	}
	d.logEvent(corelog.Event{
		Layer: corelog.LayerDispatch, Category: corelog.CategoryError,
		RemoteID: remoteIDString(msg.RemoteID),
		Error:    &corelog.ErrorEventData{Layer: corelog.LayerDispatch, Message: message, Context: context},
	})
}

func (d *Dispatcher) logDispatch(msg gesture.ActionMessage, verb, target string, brightness *float64, ok bool) {
	d.logEvent(corelog.Event{
		Layer: corelog.LayerDispatch, Category: corelog.CategoryDispatch,
		RemoteID: remoteIDString(msg.RemoteID),
		Dispatch: &corelog.DispatchEvent{Verb: verb, TargetUUID: target, Brightness: brightness, Succeeded: ok},
	})
}

func (d *Dispatcher) logEvent(e corelog.Event) {
	e.Timestamp = time.Now()
	d.logger.Log(e)
}

func remoteIDString(r topology.RemoteID) string {
	return strconv.Itoa(int(r))
}
