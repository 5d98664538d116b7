// Package audio inspects the PulseAudio devices the speech engines will use.
package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Kind distinguishes capture sources from playback sinks.
type Kind string

const (
	KindSource Kind = "source"
	KindSink   Kind = "sink"
)

// Device describes one Pulse source or sink.
type Device struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
	State       string `json:"state"`
	Available   bool   `json:"available"`
	Muted       bool   `json:"muted"`
	Default     bool   `json:"default"`
}

// Usable reports whether the device can carry audio right now.
func (d Device) Usable() bool {
	return d.Available && !d.Muted
}

func (d Device) String() string {
	flags := make([]string, 0, 3)
	if d.Default {
		flags = append(flags, "default")
	}
	if !d.Available {
		flags = append(flags, "unavailable")
	}
	if d.Muted {
		flags = append(flags, "muted")
	}
	line := fmt.Sprintf("%-6s %s (%s) %s", d.Kind, d.ID, d.Description, d.State)
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ",") + "]"
	}
	return line
}

// Inventory is a snapshot of the Pulse server's devices.
type Inventory struct {
	Sources []Device `json:"sources"`
	Sinks   []Device `json:"sinks"`
}

// DefaultSource returns the server's default capture source.
func (inv Inventory) DefaultSource() (Device, bool) {
	return findDefault(inv.Sources)
}

// DefaultSink returns the server's default playback sink.
func (inv Inventory) DefaultSink() (Device, bool) {
	return findDefault(inv.Sinks)
}

func findDefault(devices []Device) (Device, bool) {
	for _, device := range devices {
		if device.Default {
			return device, true
		}
	}
	return Device{}, false
}

// ListDevices returns Pulse sources and sinks with default/availability metadata.
func ListDevices(_ context.Context) (Inventory, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("koe"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return Inventory{}, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	sources, err := listSources(client)
	if err != nil {
		return Inventory{}, err
	}
	sinks, err := listSinks(client)
	if err != nil {
		return Inventory{}, err
	}
	return Inventory{Sources: sources, Sinks: sinks}, nil
}

func listSources(client *pulse.Client) ([]Device, error) {
	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, source := range infos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			Kind:        KindSource,
			State:       stateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

func listSinks(client *pulse.Client) ([]Device, error) {
	defaultSink, err := client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("read default sink: %w", err)
	}
	defaultID := defaultSink.ID()

	var infos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, sink := range infos {
		if sink == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          sink.SinkName,
			Description: sink.Device,
			Kind:        KindSink,
			State:       stateString(sink.State),
			Available:   sinkAvailable(sink),
			Muted:       sink.Mute,
			Default:     sink.SinkName == defaultID,
		})
	}
	return devices, nil
}

// stateString maps Pulse source/sink state constants to human-readable values.
func stateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// portAvailable reports PulseAudio port availability: unknown=0, no=1, yes=2.
func portAvailable(available uint32) bool {
	return available == 0 || available == 2
}

func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	for _, port := range source.Ports {
		if port.Name == source.ActivePortName {
			return portAvailable(port.Available)
		}
	}
	return true
}

func sinkAvailable(sink *pulseproto.GetSinkInfoReply) bool {
	if sink == nil {
		return false
	}
	for _, port := range sink.Ports {
		if port.Name == sink.ActivePortName {
			return portAvailable(port.Available)
		}
	}
	return true
}
