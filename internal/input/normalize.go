package input

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/holoplot/go-evdev"

	"keysonscreen/internal/keys"
)

// Normalize converts a raw event into an identifier and state. ok is false
// for events the key display does not care about.
func Normalize(ev RawEvent) (id keys.Identifier, state keys.State, ok bool) {
	switch ev.Kind {
	case KindKey:
		state, ok = keyState(ev.Value)
		if !ok {
			return "", 0, false
		}
		return keyIdentifier(ev.Code), state, true
	case KindRelative:
		// Direction is not shown; both wheel axes are the same pulse. The
		// high resolution axes duplicate these and are dropped.
		switch ev.Code {
		case evdev.REL_WHEEL, evdev.REL_HWHEEL:
			return keys.ScrollWheel, keys.ScrollPulse, true
		default:
			return "", 0, false
		}
	case KindSyntheticScroll:
		return keys.ScrollWheel, keys.Up, true
	default:
		return "", 0, false
	}
}

func keyState(value int32) (keys.State, bool) {
	switch value {
	case 0:
		return keys.Up, true
	case 1:
		return keys.Down, true
	case 2:
		return keys.Hold, true
	default:
		return 0, false
	}
}

func keyIdentifier(code evdev.EvCode) keys.Identifier {
	if name := keyNames()[code]; name != "" {
		return keys.Identifier(name)
	}
	return keys.Identifier("KEY_" + strconv.Itoa(int(code)))
}

// keyNames maps every EV_KEY code to one name. KEYToString lists a single
// name per code and leaves aliases such as BTN_LEFT commented out, so the
// table is built from KEYFromString, which holds every alias.
var keyNames = sync.OnceValue(func() map[evdev.EvCode]string {
	aliases := make(map[evdev.EvCode][]string, len(evdev.KEYFromString))
	for name, code := range evdev.KEYFromString {
		if strings.HasPrefix(name, "KEY_") || strings.HasPrefix(name, "BTN_") {
			aliases[code] = append(aliases[code], name)
		}
	}
	names := make(map[evdev.EvCode]string, len(aliases))
	for code, list := range aliases {
		names[code] = PreferredName(list)
	}
	return names
})

// PreferredName picks one name when a code is known under several: the
// alphabetically first, ignoring range markers like KEY_MIN_INTERESTING
// unless nothing else is left.
func PreferredName(aliases []string) string {
	sorted := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias = strings.TrimSpace(alias); alias != "" {
			sorted = append(sorted, alias)
		}
	}
	if len(sorted) == 0 {
		return ""
	}
	slices.Sort(sorted)
	for _, alias := range sorted {
		if !rangeMarker(alias) {
			return alias
		}
	}
	return sorted[0]
}

func rangeMarker(name string) bool {
	return strings.Contains(name, "_MIN_") || strings.HasSuffix(name, "_MAX") || strings.HasSuffix(name, "_CNT")
}

// KnownIdentifiers returns every key and button identifier evdev knows
// plus the scroll wheel, sorted and without duplicates.
func KnownIdentifiers() []keys.Identifier {
	names := keyNames()
	ids := make([]keys.Identifier, 0, len(names)+1)
	for _, name := range names {
		ids = append(ids, keys.Identifier(name))
	}
	ids = append(ids, keys.ScrollWheel)
	slices.Sort(ids)
	return slices.Compact(ids)
}
