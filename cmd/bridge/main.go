// Command bridge connects a Lutron Caséta Smart Bridge to a Philips Hue
// bridge: it holds a telnet session to the former, recognizes button
// gestures on its remotes, and issues the corresponding lighting API calls
// on the latter.
//
// Usage:
//
//	bridge [flags]
//
// Flags:
//
//	--config string         Path to the YAML configuration file (default "caseta-listener.yaml")
//	--log-level string      Log level: debug, info, warn, error (default "info")
//	--protocol-log string   Path to append a CBOR protocol event log to (optional)
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkulla01/caseta-listener/internal/config"
	"github.com/dkulla01/caseta-listener/pkg/connection"
	"github.com/dkulla01/caseta-listener/pkg/dispatch"
	"github.com/dkulla01/caseta-listener/pkg/gesture"
	"github.com/dkulla01/caseta-listener/pkg/hueclient"
	corelog "github.com/dkulla01/caseta-listener/pkg/log"
	"github.com/dkulla01/caseta-listener/pkg/roomcache"
	"github.com/dkulla01/caseta-listener/pkg/router"
)

var (
	cfgFile     string
	logLevel    string
	protocolLog string
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge Lutron Caséta remote gestures to Philips Hue lighting",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cfgFile, logLevel, protocolLog)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", `path to the YAML configuration file (default "caseta-listener.yaml")`)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&protocolLog, "protocol-log", "", "path to append a CBOR protocol event log to (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the bridge's components together and blocks until ctx is
// canceled by a signal or a fatal error (ConfigurationError,
// AuthenticationError) is observed. A clean, signal-driven shutdown returns
// nil; anything else is returned for main to report and exit non-zero on.
func run(cfgFile, logLevel, protocolLogPath string) error {
	logger, closeLogger, err := newLogger(logLevel, protocolLogPath)
	if err != nil {
		return fmt.Errorf("bridge: opening protocol log: %w", err)
	}
	defer closeLogger()

	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := roomcache.New()
	if err != nil {
		return fmt.Errorf("bridge: building room cache: %w", err)
	}

	client := hueclient.New(settings.LightingHost, settings.LightingApplicationKey)
	dispatcher := dispatch.New(settings.Topology, cache, lightingClientAdapter{client}, logger)

	conn := connection.NewConnectionManager(settings.Hub, connection.DefaultConfig(), logger)
	defer conn.Close()

	actions := make(chan gesture.ActionMessage, 32)
	rtr := router.New(settings.Topology, gesture.DefaultConfig(), actions, logger)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx, actions)
	}()

	runErr := rtr.Run(ctx, conn)
	close(actions)
	<-dispatcherDone

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("bridge: %w", runErr)
	}
	return nil
}

// lightingClientAdapter satisfies dispatch.LightingClient by converting
// hueclient's GroupedLight to dispatch's local copy of that type, as
// dispatch/interfaces.go's doc comment calls for.
type lightingClientAdapter struct {
	client *hueclient.Client
}

func (a lightingClientAdapter) GetGroupedLight(ctx context.Context, uuid string) (dispatch.GroupedLight, error) {
	light, err := a.client.GetGroupedLight(ctx, uuid)
	return toDispatchGroupedLight(light), err
}

func (a lightingClientAdapter) TurnOn(ctx context.Context, uuid string) (dispatch.GroupedLight, error) {
	light, err := a.client.TurnOn(ctx, uuid)
	return toDispatchGroupedLight(light), err
}

func (a lightingClientAdapter) TurnOff(ctx context.Context, uuid string) error {
	return a.client.TurnOff(ctx, uuid)
}

func (a lightingClientAdapter) UpdateBrightness(ctx context.Context, uuid string, brightness float64) error {
	return a.client.UpdateBrightness(ctx, uuid, brightness)
}

func (a lightingClientAdapter) RecallScene(ctx context.Context, sceneUUID string, brightness *float64) error {
	return a.client.RecallScene(ctx, sceneUUID, brightness)
}

func toDispatchGroupedLight(light hueclient.GroupedLight) dispatch.GroupedLight {
	return dispatch.GroupedLight{On: light.On, Brightness: light.Brightness}
}

// newLogger builds the console logger and, if protocolLogPath is set, fans
// out every event to a CBOR file log as well (mirroring the teacher's
// --protocol-log-file, readable back with a Reader/Filter). The returned
// close func flushes and closes the file log, if one was opened; it is a
// no-op otherwise.
func newLogger(level, protocolLogPath string) (corelog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	console := corelog.NewSlogAdapter(slog.New(handler))

	if protocolLogPath == "" {
		return console, func() {}, nil
	}

	fileLogger, err := corelog.NewFileLogger(protocolLogPath)
	if err != nil {
		return nil, nil, err
	}
	return corelog.NewMultiLogger(console, fileLogger), func() { _ = fileLogger.Close() }, nil
}
