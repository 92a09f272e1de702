package spin

import (
	"math"
	"testing"
)

const tol = 1e-9

func asymptoticParams() Params {
	p := DefaultParams()
	p.SettleEpsilon = 0
	return p
}

func TestTargetAngleExample(t *testing.T) {
	got := TargetAngle(10.0, Heads)
	want := 2 * fullTurn
	if math.Abs(got-want) > tol {
		t.Fatalf("expected %.6f, got %.6f", want, got)
	}
}

func TestTargetAngleParity(t *testing.T) {
	for _, current := range []float64{0, 0.1, 1.5, 3.14, 6.0, 6.3, 10, 12.5, 99.9, 1234.5} {
		heads := TargetAngle(current, Heads)
		if r := math.Mod(heads, fullTurn); r > 1e-6 && fullTurn-r > 1e-6 {
			t.Fatalf("heads target %.6f for %.3f not a multiple of 2π (rem %.6f)", heads, current, r)
		}
		tails := TargetAngle(current, Tails)
		if r := math.Mod(tails, fullTurn); math.Abs(r-math.Pi) > 1e-6 {
			t.Fatalf("tails target %.6f for %.3f not ≡ π (rem %.6f)", tails, current, r)
		}
	}
}

func TestTargetAngleForwardGuarantee(t *testing.T) {
	for i := 0; i < 2000; i++ {
		current := float64(i) * 0.0137
		for _, face := range []Outcome{Heads, Tails} {
			target := TargetAngle(current, face)
			if target < current+math.Pi/2-tol {
				t.Fatalf("target %.6f too close to current %.6f for %v", target, current, face)
			}
		}
	}
}

func TestTargetAngleAddsTurnWhenTooClose(t *testing.T) {
	current := fullTurn - 0.2
	got := TargetAngle(current, Heads)
	if math.Abs(got-2*fullTurn) > tol {
		t.Fatalf("expected extra turn, got %.6f", got)
	}
}

func TestStepMonotonic(t *testing.T) {
	p := DefaultParams()
	s := State{}
	frames := []Input{
		{Delta: 0.016},
		{Loading: true, Delta: 0.016, Elapsed: 0.1},
		{Loading: true, Delta: 0, Elapsed: 0.1},
		{Loading: true, Delta: -1, Elapsed: 0.1},
		{Loading: true, Delta: 0.5, Elapsed: 0.6},
		{Result: Tails, Delta: 0.016},
		{Result: Heads, Delta: 0.016},
		{Loading: true, Delta: 0.016},
		{Result: Heads, Delta: 0.016},
		{Result: Error, Delta: 0.016},
	}
	for round := 0; round < 50; round++ {
		for i, in := range frames {
			prev := s.Angle
			s = Step(p, s, in)
			if s.Angle < prev {
				t.Fatalf("round %d frame %d: angle decreased %.6f -> %.6f", round, i, prev, s.Angle)
			}
		}
	}
}

func TestStepSingleTargetCommit(t *testing.T) {
	p := asymptoticParams()
	s := State{Angle: 10}
	s = Step(p, s, Input{Result: Heads, Delta: 0.016})
	if !s.HasTarget {
		t.Fatalf("expected target after first settling frame")
	}
	target := s.Target
	for i := 0; i < 500; i++ {
		s = Step(p, s, Input{Result: Heads, Delta: 0.016})
		if s.Target != target {
			t.Fatalf("target changed on frame %d: %.6f -> %.6f", i, target, s.Target)
		}
	}
}

func TestStepFaceChangeKeepsLockedTarget(t *testing.T) {
	p := asymptoticParams()
	s := Step(p, State{Angle: 10}, Input{Result: Heads, Delta: 0.016})
	target := s.Target
	s = Step(p, s, Input{Result: Tails, Delta: 0.016})
	if s.Target != target {
		t.Fatalf("expected locked target %.6f, got %.6f", target, s.Target)
	}
}

func TestStepConvergence(t *testing.T) {
	p := asymptoticParams()
	s := Step(p, State{Angle: 10}, Input{Result: Heads, Delta: 0})
	initial := s.Target - s.Angle
	prevErr := initial
	const frames = 60
	for n := 1; n <= frames; n++ {
		s = Step(p, s, Input{Result: Heads, Delta: 0.016})
		errN := s.Target - s.Angle
		if errN >= prevErr {
			t.Fatalf("error did not shrink on frame %d: %.9f -> %.9f", n, prevErr, errN)
		}
		want := initial * math.Pow(1-p.LandingFactor, float64(n))
		if math.Abs(errN-want) > 1e-9 {
			t.Fatalf("frame %d: expected error %.9f, got %.9f", n, want, errN)
		}
		prevErr = errN
	}
}

func TestStepNoTargetWhileUnknown(t *testing.T) {
	p := DefaultParams()
	s := State{}
	for i := 0; i < 200; i++ {
		in := Input{Loading: i%3 != 0, Result: Unknown, Delta: 0.016, Elapsed: float64(i) * 0.016}
		s = Step(p, s, in)
		if s.HasTarget {
			t.Fatalf("unexpected target on frame %d", i)
		}
	}
}

func TestStepResetOnNewToss(t *testing.T) {
	p := asymptoticParams()
	s := Step(p, State{Angle: 3}, Input{Result: Tails, Delta: 0.016})
	if !s.HasTarget || s.Phase != PhaseSettling {
		t.Fatalf("expected settling with target, got %+v", s)
	}
	s = Step(p, s, Input{Loading: true, Delta: 0.016, Elapsed: 1})
	if s.HasTarget {
		t.Fatalf("expected target cleared on first loading frame")
	}
	if s.Phase != PhaseSpinning {
		t.Fatalf("expected spinning, got %v", s.Phase)
	}
}

func TestStepNonPositiveDeltaFreezesAngle(t *testing.T) {
	p := DefaultParams()
	cases := []Input{
		{Delta: 0},
		{Loading: true, Delta: -0.5, Elapsed: 2},
		{Result: Heads, Delta: 0},
	}
	for _, in := range cases {
		s := State{Angle: 4, Yaw: 0.7, Wobble: 0.2}
		got := Step(p, s, in)
		if got.Angle != s.Angle || got.Yaw != s.Yaw || got.Wobble != s.Wobble {
			t.Fatalf("input %+v moved state: %+v", in, got)
		}
	}
}

func TestStepIdleAndSpinningRates(t *testing.T) {
	p := DefaultParams()
	s := Step(p, State{Angle: 1, Wobble: 0.3}, Input{Delta: 0.5})
	if s.Angle != 1 || math.Abs(s.Yaw-p.IdleRate*0.5) > tol || s.Wobble != 0 || s.Phase != PhaseIdle {
		t.Fatalf("unexpected idle state %+v", s)
	}
	s = Step(p, State{}, Input{Loading: true, Delta: 0.5, Elapsed: 0.25})
	if math.Abs(s.Angle-p.SpinRate*0.5) > tol {
		t.Fatalf("unexpected spin angle %.6f", s.Angle)
	}
	wantWobble := p.WobbleAmplitude * math.Sin(0.25*p.WobbleFrequency)
	if math.Abs(s.Wobble-wantWobble) > tol {
		t.Fatalf("expected wobble %.6f, got %.6f", wantWobble, s.Wobble)
	}
}

func TestStepYawRestsOnToss(t *testing.T) {
	p := DefaultParams()
	s := State{}
	for i := 0; i < 30; i++ {
		s = Step(p, s, Input{Delta: 0.016})
	}
	if s.Yaw <= 0 {
		t.Fatalf("expected idle yaw to advance, got %+v", s)
	}
	for i := 0; i < 100; i++ {
		s = Step(p, s, Input{Loading: true, Delta: 0.016, Elapsed: float64(i) * 0.016})
	}
	for i := 0; i < 2000 && s.Phase != PhaseSettled; i++ {
		s = Step(p, s, Input{Result: Heads, Delta: 0.016})
	}
	if s.Phase != PhaseSettled {
		t.Fatalf("expected settled phase, got %+v", s)
	}
	if s.Yaw != restYaw(s.Yaw) {
		t.Fatalf("expected yaw to rest on a half turn, got %.6f", s.Yaw)
	}
	if math.Abs(math.Cos(s.Yaw)) != 1 {
		t.Fatalf("expected full face at rest, yaw %.6f", s.Yaw)
	}
}

func TestParamsSanitized(t *testing.T) {
	p := Params{IdleRate: -1, SpinRate: 5, WobbleAmplitude: math.NaN(), WobbleFrequency: 6, LandingFactor: 1.8, WobbleDamp: 0, SettleEpsilon: -1}
	got := p.Sanitized()
	if err := got.Validate(); err != nil {
		t.Fatalf("sanitized params still invalid: %v", err)
	}
	def := DefaultParams()
	if got.LandingFactor != def.LandingFactor || got.IdleRate != def.IdleRate || got.WobbleDamp != def.WobbleDamp {
		t.Fatalf("expected defaults for invalid fields, got %+v", got)
	}
	if got.SpinRate != 5 {
		t.Fatalf("valid field was replaced: %+v", got)
	}
}

func TestStepErrorOutcomeBehavesAsUnknown(t *testing.T) {
	p := DefaultParams()
	for _, result := range []Outcome{Error, Outcome(42)} {
		s := Step(p, State{}, Input{Result: result, Delta: 0.1})
		if s.Phase != PhaseIdle || s.HasTarget {
			t.Fatalf("result %d: expected idle without target, got %+v", result, s)
		}
	}
}

func TestStepSettlesAndStops(t *testing.T) {
	p := DefaultParams()
	s := State{Angle: 10, Wobble: 0.3}
	for i := 0; i < 1000 && s.Phase != PhaseSettled; i++ {
		s = Step(p, s, Input{Result: Tails, Delta: 0.016})
	}
	if s.Phase != PhaseSettled {
		t.Fatalf("expected settled phase, got %v", s.Phase)
	}
	if s.Angle != s.Target || s.Wobble != 0 {
		t.Fatalf("expected exact landing, got %+v", s)
	}
	again := Step(p, s, Input{Result: Tails, Delta: 0.016})
	if again != s {
		t.Fatalf("settled state changed: %+v -> %+v", s, again)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	bad := DefaultParams()
	bad.LandingFactor = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero landing factor")
	}
	bad = DefaultParams()
	bad.SpinRate = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for negative spin rate")
	}
}
