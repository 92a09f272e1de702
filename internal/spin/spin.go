// Package spin implements the landing-angle state machine for the coin.
package spin

import (
	"fmt"
	"math"
)

const fullTurn = 2 * math.Pi

// Phase is the controller state derived from (loading, result).
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpinning
	PhaseSettling
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseSpinning:
		return "spinning"
	case PhaseSettling:
		return "settling"
	case PhaseSettled:
		return "settled"
	default:
		return "idle"
	}
}

// State is the angle state carried between frames.
type State struct {
	// Angle is the primary flip angle in radians. It never decreases.
	Angle float64
	// Yaw is the idle turn about the vertical axis. It rests on a
	// multiple of pi once a toss starts.
	Yaw float64
	// Wobble is the cosmetic secondary-axis offset.
	Wobble float64
	// Target is the landing angle; valid only when HasTarget is set.
	Target    float64
	HasTarget bool
	Phase     Phase
}

// Input is the per-frame snapshot supplied by the host loop.
type Input struct {
	Loading bool
	Result  Outcome
	// Delta is the number of seconds since the previous frame.
	Delta float64
	// Elapsed is monotonic seconds since the host started.
	Elapsed float64
}

// Params tunes the animation.
type Params struct {
	IdleRate        float64
	SpinRate        float64
	WobbleAmplitude float64
	WobbleFrequency float64
	LandingFactor   float64
	WobbleDamp      float64
	// SettleEpsilon is the remaining error below which the coin snaps to
	// its target and stops. Zero keeps interpolating forever.
	SettleEpsilon float64
}

// DefaultParams returns the stock animation tuning.
func DefaultParams() Params {
	return Params{
		IdleRate:        2,
		SpinRate:        5,
		WobbleAmplitude: 0.35,
		WobbleFrequency: 6,
		LandingFactor:   0.05,
		WobbleDamp:      0.05,
		SettleEpsilon:   1e-3,
	}
}

// Validate rejects parameters that would break monotonicity or convergence.
func (p Params) Validate() error {
	if p.IdleRate < 0 {
		return fmt.Errorf("idle rate must be >= 0")
	}
	if p.SpinRate < 0 {
		return fmt.Errorf("spin rate must be >= 0")
	}
	if p.WobbleAmplitude < 0 {
		return fmt.Errorf("wobble amplitude must be >= 0")
	}
	if p.LandingFactor <= 0 || p.LandingFactor > 1 {
		return fmt.Errorf("landing factor must be in (0, 1]")
	}
	if p.WobbleDamp <= 0 || p.WobbleDamp > 1 {
		return fmt.Errorf("wobble damp must be in (0, 1]")
	}
	if p.SettleEpsilon < 0 {
		return fmt.Errorf("settle epsilon must be >= 0")
	}
	return nil
}

// Sanitized returns p with every invalid field replaced by its default, so
// the result always passes Validate.
func (p Params) Sanitized() Params {
	def := DefaultParams()
	if !(p.IdleRate >= 0) {
		p.IdleRate = def.IdleRate
	}
	if !(p.SpinRate >= 0) {
		p.SpinRate = def.SpinRate
	}
	if !(p.WobbleAmplitude >= 0) {
		p.WobbleAmplitude = def.WobbleAmplitude
	}
	if math.IsNaN(p.WobbleFrequency) || math.IsInf(p.WobbleFrequency, 0) {
		p.WobbleFrequency = def.WobbleFrequency
	}
	if !(p.LandingFactor > 0 && p.LandingFactor <= 1) {
		p.LandingFactor = def.LandingFactor
	}
	if !(p.WobbleDamp > 0 && p.WobbleDamp <= 1) {
		p.WobbleDamp = def.WobbleDamp
	}
	if !(p.SettleEpsilon >= 0) {
		p.SettleEpsilon = def.SettleEpsilon
	}
	return p
}

// TargetAngle returns the landing angle for face, at least a quarter turn
// ahead of current so the coin keeps rolling forward before it stops.
func TargetAngle(current float64, face Outcome) float64 {
	rounds := math.Ceil(current / fullTurn)
	base := rounds * fullTurn
	if face == Tails {
		base += math.Pi
	}
	if base-current < fullTurn/4 {
		base += fullTurn
	}
	return base
}

// Step advances s by one frame. It is pure: the same inputs always yield the
// same state.
func Step(p Params, s State, in Input) State {
	next := s
	switch {
	case in.Loading:
		next.Phase = PhaseSpinning
		next.HasTarget = false
		next.Target = 0
		if in.Delta <= 0 {
			return next
		}
		next.Angle += p.SpinRate * in.Delta
		next.Yaw = lerp(next.Yaw, restYaw(next.Yaw), p.WobbleDamp)
		next.Wobble = p.WobbleAmplitude * math.Sin(in.Elapsed*p.WobbleFrequency)
		return next

	case in.Result.IsFace():
		if s.Phase == PhaseSettled && s.HasTarget {
			return next
		}
		if !next.HasTarget {
			next.Target = TargetAngle(next.Angle, in.Result)
			next.HasTarget = true
		}
		next.Phase = PhaseSettling
		if in.Delta <= 0 {
			return next
		}
		next.Angle = lerp(next.Angle, next.Target, p.LandingFactor)
		next.Wobble = lerp(next.Wobble, 0, p.WobbleDamp)
		rest := restYaw(next.Yaw)
		next.Yaw = lerp(next.Yaw, rest, p.WobbleDamp)
		if next.Target-next.Angle <= p.SettleEpsilon &&
			math.Abs(next.Wobble) <= p.SettleEpsilon &&
			math.Abs(next.Yaw-rest) <= p.SettleEpsilon {
			next.Angle = next.Target
			next.Yaw = rest
			next.Wobble = 0
			next.Phase = PhaseSettled
		}
		return next

	default:
		next.Phase = PhaseIdle
		next.HasTarget = false
		next.Target = 0
		if in.Delta <= 0 {
			return next
		}
		next.Yaw += p.IdleRate * in.Delta
		next.Wobble = 0
		return next
	}
}

// FaceUp returns the face shown to a viewer looking down the rest axis.
func FaceUp(angle float64) Outcome {
	if math.Cos(angle) >= 0 {
		return Heads
	}
	return Tails
}

// restYaw is the nearest yaw that shows a full face.
func restYaw(yaw float64) float64 {
	return math.Round(yaw/math.Pi) * math.Pi
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
