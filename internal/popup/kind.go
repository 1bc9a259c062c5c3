package popup

import (
	"fmt"
	"strings"
)

// Kind selects the transition a pop-up plays before it holds and returns.
type Kind int

const (
	ScaleAndFade Kind = iota
	SlideUp
	SlideDown
	Bounce
)

var kindNames = [...]string{
	ScaleAndFade: "scale_and_fade",
	SlideUp:      "slide_up",
	SlideDown:    "slide_down",
	Bounce:       "bounce",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Valid() bool { return k >= 0 && int(k) < len(kindNames) }

// ParseKind accepts "slide_up", "SlideUp", "slide-up" and "Slide Up".
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	for k, name := range kindNames {
		if norm == strings.ReplaceAll(name, "_", "") {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// State is the sequencer's position in its show cycle.
type State int

const (
	Idle State = iota
	Advancing
	Holding
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Advancing:
		return "advancing"
	case Holding:
		return "holding"
	case Returning:
		return "returning"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
