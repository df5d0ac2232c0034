package dialog

import (
	"strings"

	"github.com/mvoronin/jobscout/internal/format"
)

// EventKind tags a classified inbound message.
type EventKind int

const (
	EventText EventKind = iota // free text, consumed by the current step
	EventCancel
	EventMenu
)

// MenuOption identifies which quick-reply button was pressed.
type MenuOption int

const (
	MenuNone MenuOption = iota
	MenuChangeKeywords
	MenuChangeLocations
	MenuChangeSalary
	MenuChangeExperience
	MenuShowSettings
	MenuMultipleLocations
	MenuCustomAmount
)

// Event is one classified inbound message.
type Event struct {
	Kind EventKind
	Menu MenuOption
	Text string
}

// idleMenu maps settings-menu labels to options. Matched only at Idle:
// inside an Awaiting* step the same text is ordinary input, mirroring how
// the dialog consumes whatever the user types there.
var idleMenu = map[string]MenuOption{
	format.ButtonChangeKeywords:   MenuChangeKeywords,
	format.ButtonChangeLocations:  MenuChangeLocations,
	format.ButtonChangeSalary:     MenuChangeSalary,
	format.ButtonChangeExperience: MenuChangeExperience,
	format.ButtonShowSettings:     MenuShowSettings,
}

// Classify turns raw message text into an Event for the given step.
// Cancellation is recognized before anything else, in every step.
func Classify(step Step, text string) Event {
	trimmed := strings.TrimSpace(text)

	if trimmed == format.ButtonCancel {
		return Event{Kind: EventCancel}
	}

	switch step {
	case StepIdle:
		if opt, ok := idleMenu[trimmed]; ok {
			return Event{Kind: EventMenu, Menu: opt}
		}
	case StepLocations:
		if trimmed == format.ButtonMultipleLocations {
			return Event{Kind: EventMenu, Menu: MenuMultipleLocations}
		}
	case StepSalary:
		if trimmed == format.ButtonCustomAmount {
			return Event{Kind: EventMenu, Menu: MenuCustomAmount}
		}
	}

	return Event{Kind: EventText, Text: trimmed}
}

// splitList splits comma-separated input, trims each segment, and drops
// empty ones. Trimming and empty-segment filtering always precede any count
// validation.
func splitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
