package keys

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identifier names a physical key or button, e.g. "KEY_LEFTSHIFT", "BTN_LEFT",
// or the synthetic "REL_WHEEL".
type Identifier string

const (
	ScrollWheel Identifier = "REL_WHEEL"
	keyPrefix              = "KEY_"
)

// ModifierInfo is attached to labels of keys whose name carries a left/right
// qualifier. Keys without it are terminal keys in a combination.
type ModifierInfo struct {
	Left     bool   `json:"left"`
	Right    bool   `json:"right"`
	BaseType string `json:"base_type"`
}

// Label is the display form of one identifier.
type Label struct {
	Name     string        `json:"name"`
	Modifier *ModifierInfo `json:"modifier,omitempty"`
}

func (l Label) IsModifier() bool {
	return l.Modifier != nil
}

var fixedLabels = map[Identifier]string{
	"BTN_LEFT":       "Left Click",
	"BTN_RIGHT":      "Right Click",
	"BTN_MIDDLE":     "Middle Click",
	ScrollWheel:      "Scroll Wheel",
	"KEY_LEFT":       "Left",
	"KEY_RIGHT":      "Right",
	"KEY_LEFTBRACE":  "[",
	"KEY_RIGHTBRACE": "]",
}

// Resolve returns the display label for id. It never fails: unknown
// identifiers fall through to a capitalized form of their name.
func Resolve(id Identifier, differentiateSides bool) Label {
	if name, ok := fixedLabels[id]; ok {
		return Label{Name: name}
	}
	name := strings.TrimPrefix(string(id), keyPrefix)
	info := modifierInfo(name)
	if info == nil {
		return Label{Name: capitalize(name)}
	}
	display := capitalize(strings.TrimSpace(info.BaseType))
	if differentiateSides {
		if info.Left {
			display = "Left " + display
		} else {
			display = "Right " + display
		}
	}
	return Label{Name: display, Modifier: info}
}

func modifierInfo(name string) *ModifierInfo {
	lower := strings.ToLower(name)
	left := strings.Contains(lower, "left")
	right := strings.Contains(lower, "right")
	if !left && !right {
		return nil
	}
	base := strings.ReplaceAll(lower, "left", "")
	base = strings.ReplaceAll(base, "right", "")
	return &ModifierInfo{Left: left, Right: right, BaseType: base}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
