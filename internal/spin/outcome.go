package spin

import "strings"

// Outcome is the resting face reported for a toss.
type Outcome int

const (
	// Unknown means no face has been decided yet.
	Unknown Outcome = iota
	// Heads rests at an angle congruent to 0 mod 2π.
	Heads
	// Tails rests at an angle congruent to π mod 2π.
	Tails
	// Error is a terminal source failure. It is not a face.
	Error
)

// ParseOutcome maps a label to an Outcome. Unrecognized labels are Unknown.
func ParseOutcome(label string) Outcome {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "HEADS":
		return Heads
	case "TAILS":
		return Tails
	case "ERROR":
		return Error
	default:
		return Unknown
	}
}

// IsFace reports whether o names a face the coin can land on.
func (o Outcome) IsFace() bool {
	return o == Heads || o == Tails
}

// String returns the label used on the wire and in storage.
func (o Outcome) String() string {
	switch o {
	case Heads:
		return "HEADS"
	case Tails:
		return "TAILS"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}
