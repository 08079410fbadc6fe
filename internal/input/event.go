package input

import (
	"time"

	"github.com/holoplot/go-evdev"
)

// Kind tags the variant of a RawEvent.
type Kind uint8

const (
	KindOther Kind = iota
	KindKey
	KindRelative
	KindSyntheticScroll
	// KindDeviceLost follows the last event forwarded from a device that
	// went away. Only Device is set.
	KindDeviceLost
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindRelative:
		return "relative"
	case KindSyntheticScroll:
		return "synthetic_scroll"
	case KindDeviceLost:
		return "device_lost"
	default:
		return "other"
	}
}

// RawEvent is one event read from a device, before normalization.
type RawEvent struct {
	Kind   Kind
	Code   evdev.EvCode
	Value  int32
	Time   time.Time
	Device string
}

// FromEvdev tags an evdev event with its kind.
func FromEvdev(ev *evdev.InputEvent, device string) RawEvent {
	raw := RawEvent{
		Code:   ev.Code,
		Value:  ev.Value,
		Time:   time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
		Device: device,
	}
	switch ev.Type {
	case evdev.EV_KEY:
		raw.Kind = KindKey
	case evdev.EV_REL:
		raw.Kind = KindRelative
	default:
		raw.Kind = KindOther
	}
	return raw
}

// SyntheticScrollRelease is fed back after a wheel pulse, since wheels never
// report a release of their own.
func SyntheticScrollRelease() RawEvent {
	return RawEvent{Kind: KindSyntheticScroll, Code: evdev.REL_WHEEL, Time: time.Now()}
}

// DeviceLostEvent marks the end of the event stream of device.
func DeviceLostEvent(device string) RawEvent {
	return RawEvent{Kind: KindDeviceLost, Time: time.Now(), Device: device}
}
