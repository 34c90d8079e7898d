package domain

type BreachState string

const (
	BreachInside  BreachState = "inside"
	BreachOutside BreachState = "outside"
)

type TransitionDirection string

const (
	EnteredBreach TransitionDirection = "entered_breach"
	ClearedBreach TransitionDirection = "cleared_breach"
)

// TransitionEvent is emitted when a sample flips the breach classification.
// Distance is measured in meters from the reference point.
type TransitionEvent struct {
	Direction TransitionDirection `json:"direction"`
	Position  Position            `json:"position"`
	Distance  float64             `json:"distance_meters"`
}
