package router

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dkulla01/caseta-listener/pkg/connection"
	"github.com/dkulla01/caseta-listener/pkg/gesture"
	corelog "github.com/dkulla01/caseta-listener/pkg/log"
	"github.com/dkulla01/caseta-listener/pkg/protocol"
	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// FrameSource is the ConnectionManager surface the Router needs. Recoverable
// transport trouble (bad address, connect timeout, a dead connection, a
// malformed line) is handled inside the implementation and never reaches
// AwaitFrame's caller as an error; only ErrEmptyMessage, ErrAuthentication,
// and ctx cancellation do.
type FrameSource interface {
	AwaitFrame(ctx context.Context) (protocol.Frame, error)
}

// Router is the single task that turns ButtonEvent frames into recognizer
// lifecycles. It is the RecognizerEntry table's only writer.
type Router struct {
	topo    *topology.Topology
	cfg     gesture.Config
	actions chan<- gesture.ActionMessage
	logger  corelog.Logger

	entries map[topology.RemoteID]*gesture.RemoteState
	wg      sync.WaitGroup
}

// New builds a Router. logger may be nil, in which case events are discarded.
func New(topo *topology.Topology, cfg gesture.Config, actions chan<- gesture.ActionMessage, logger corelog.Logger) *Router {
	if logger == nil {
		logger = corelog.NoopLogger{}
	}
	return &Router{
		topo:    topo,
		cfg:     cfg,
		actions: actions,
		logger:  logger,
		entries: make(map[topology.RemoteID]*gesture.RemoteState),
	}
}

// Run reads frames from source until ctx is canceled or a fatal error is
// observed (authentication failure); any other error from source is logged
// and reading continues. It returns nil on a clean, context-driven shutdown
// and the fatal error otherwise. Before
// returning, it waits for every spawned recognizer task to finish.
func (r *Router) Run(ctx context.Context, source FrameSource) error {
	defer r.wg.Wait()

	for {
		frame, err := source.AwaitFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, connection.ErrEmptyMessage) {
				continue
			}
			if errors.Is(err, connection.ErrAuthentication) {
				r.logFatal(err)
				return err
			}
			r.logRecoverable(err)
			continue
		}

		if frame.Kind != protocol.FrameButtonEvent {
			r.logUnexpected(frame)
			continue
		}
		r.handleButtonEvent(ctx, frame)
	}
}

func (r *Router) handleButtonEvent(ctx context.Context, frame protocol.Frame) {
	if _, _, ok := r.topo.Lookup(frame.RemoteID); !ok {
		r.logDrop(frame, "no topology entry for remote")
		return
	}

	entry, exists := r.entries[frame.RemoteID]
	if exists && !entry.Finished() {
		entry.Ingest(frame.ButtonID, frame.Action)
		return
	}

	// No active gesture for this remote (or its recognizer already
	// finished). A Release with nothing to attach to is dropped; a Press
	// starts a new gesture.
	if frame.Action != topology.ActionPress {
		r.logDrop(frame, "release with no active gesture")
		return
	}

	rs := gesture.NewRemoteState(frame.ButtonID, time.Now())
	r.entries[frame.RemoteID] = rs

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		gesture.Run(ctx, r.cfg, frame.RemoteID, rs, r.actions)
	}()
}

func (r *Router) logDrop(frame protocol.Frame, reason string) {
	r.logEvent(corelog.Event{
		Layer: corelog.LayerGesture, Category: corelog.CategoryError,
		RemoteID: remoteIDString(frame.RemoteID),
		Error:    &corelog.ErrorEventData{Layer: corelog.LayerGesture, Message: reason, Context: frame.ButtonID.String()},
	})
}

func (r *Router) logUnexpected(frame protocol.Frame) {
	r.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryFrame,
		Frame: &corelog.FrameEvent{Kind: frame.Kind.String()},
	})
}

func (r *Router) logRecoverable(err error) {
	r.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryError,
		Error: &corelog.ErrorEventData{Layer: corelog.LayerProtocol, Message: err.Error(), Context: "recoverable"},
	})
}

func (r *Router) logFatal(err error) {
	r.logEvent(corelog.Event{
		Layer: corelog.LayerProtocol, Category: corelog.CategoryError,
		Error: &corelog.ErrorEventData{Layer: corelog.LayerProtocol, Message: err.Error(), Context: "fatal"},
	})
}

func (r *Router) logEvent(e corelog.Event) {
	e.Timestamp = time.Now()
	r.logger.Log(e)
}

func remoteIDString(r topology.RemoteID) string {
	return strconv.Itoa(int(r))
}
