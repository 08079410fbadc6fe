package input

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/holoplot/go-evdev"
)

// ErrNoDevices is returned when no readable input device matches. Reading
// /dev/input/event* needs root or membership in the device group.
var ErrNoDevices = errors.New("no suitable input devices found: keysonscreen needs read access to /dev/input/event*; " +
	"run it as root or add yourself to the input group (sudo gpasswd -a $USER input), then log out and back in")

// DefaultProbes find keyboards by their Q key and mice by their left button.
var DefaultProbes = []string{"KEY_Q", "BTN_LEFT"}

// Source is a readable input device.
type Source interface {
	Path() string
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

type probeDevice interface {
	Source
	Name() (string, error)
	CapableEvents(t evdev.EvType) []evdev.EvCode
}

// Device is an opened input device selected by Discover.
type Device struct {
	Source
	Name    string
	Matches []string
}

var (
	listDevicePaths = func() ([]string, error) {
		paths, err := evdev.ListDevicePaths()
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			out = append(out, p.Path)
		}
		return out, nil
	}
	openDevice = func(path string) (probeDevice, error) {
		dev, err := evdev.Open(path)
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
)

// Discover opens every input device that reports one of the probe codes.
// When explicit paths are given they are opened without probing.
func Discover(probes []string, explicit []string) ([]*Device, error) {
	if len(explicit) > 0 {
		return openExplicit(explicit)
	}
	codes, err := probeCodes(probes)
	if err != nil {
		return nil, err
	}
	paths, err := listDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	seen := map[string]struct{}{}
	devices := []*Device{}
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		dev, err := openDevice(path)
		if err != nil {
			continue
		}
		matches := matchProbes(dev.CapableEvents(evdev.EV_KEY), codes)
		if len(matches) == 0 {
			_ = dev.Close()
			continue
		}
		name, _ := dev.Name()
		devices = append(devices, &Device{Source: dev, Name: name, Matches: matches})
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return devices, nil
}

func openExplicit(paths []string) ([]*Device, error) {
	devices := []*Device{}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || slices.ContainsFunc(devices, func(d *Device) bool { return d.Path() == path }) {
			continue
		}
		dev, err := openDevice(path)
		if err != nil {
			CloseAll(devices)
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		name, _ := dev.Name()
		devices = append(devices, &Device{Source: dev, Name: name})
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}
	return devices, nil
}

type probeCode struct {
	name string
	code evdev.EvCode
}

func probeCodes(probes []string) ([]probeCode, error) {
	if len(probes) == 0 {
		probes = DefaultProbes
	}
	out := make([]probeCode, 0, len(probes))
	for _, probe := range probes {
		probe = strings.ToUpper(strings.TrimSpace(probe))
		if probe == "" {
			continue
		}
		code, ok := LookupKeyCode(probe)
		if !ok {
			return nil, fmt.Errorf("unknown probe key %q", probe)
		}
		out = append(out, probeCode{name: probe, code: code})
	}
	return out, nil
}

// LookupKeyCode finds the EV_KEY code for a KEY_ or BTN_ name, aliases
// included.
func LookupKeyCode(name string) (evdev.EvCode, bool) {
	code, ok := evdev.KEYFromString[name]
	return code, ok
}

func matchProbes(capable []evdev.EvCode, probes []probeCode) []string {
	matches := []string{}
	for _, probe := range probes {
		if slices.Contains(capable, probe.code) {
			matches = append(matches, probe.name)
		}
	}
	return matches
}

// Sources adapts devices for the Reader.
func Sources(devices []*Device) []Source {
	out := make([]Source, len(devices))
	for i, dev := range devices {
		out[i] = dev
	}
	return out
}

func CloseAll(devices []*Device) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}
