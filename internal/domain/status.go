package domain

import "strings"

// Action is the outcome of a replenishment decision
type Action string

const (
	ActionReplenish Action = "replenish"
	ActionNoop      Action = "noop"
)

var actionLabels = map[Action]string{
	ActionReplenish: "Replenish",
	ActionNoop:      "No action",
}

// ActionLabel returns a human-readable label for an action.
func ActionLabel(a Action) string {
	if label, ok := actionLabels[a]; ok {
		return label
	}

	return "Unknown"
}

// ParseAction returns the action for a given label (case-insensitive).
func ParseAction(label string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(label)))
	_, ok := actionLabels[a]

	return a, ok
}
