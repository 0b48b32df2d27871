package sway

import (
	"fmt"
	"math"
	"time"
)

// FillMode decides which value an animation presents outside its active
// interval.
type FillMode uint8

const (
	FillNone      FillMode = iota // origin before start and after finish
	FillForwards                  // hold the end value after finish
	FillBackwards                 // show the start value during the start delay
	FillBoth                      // Forwards and Backwards
)

func (m FillMode) String() string {
	switch m {
	case FillNone:
		return "none"
	case FillForwards:
		return "forwards"
	case FillBackwards:
		return "backwards"
	case FillBoth:
		return "both"
	}
	return "fill(?)"
}

func (m FillMode) fillsForwards() bool  { return m == FillForwards || m == FillBoth }
func (m FillMode) fillsBackwards() bool { return m == FillBackwards || m == FillBoth }

// RepeatForever as a RepeatCount makes an animation loop until finished
// explicitly.
const RepeatForever = -1

// FrameRateRange is a hint for the scheduler. Zero means no preference.
type FrameRateRange struct {
	Min       int `json:"min" yaml:"min"`
	Max       int `json:"max" yaml:"max"`
	Preferred int `json:"preferred" yaml:"preferred"`
}

// IsZero reports whether no frame rate was requested.
func (r FrameRateRange) IsZero() bool { return r == FrameRateRange{} }

// IsValid reports whether the range is ordered and the preferred rate lies
// inside it.
func (r FrameRateRange) IsValid() bool {
	if r.Min < 0 || r.Max < r.Min {
		return false
	}
	return r.Preferred == 0 || (r.Preferred >= r.Min && r.Preferred <= r.Max)
}

// Merge widens r to cover o and keeps the higher preferred rate. A zero
// range adds nothing.
func (r FrameRateRange) Merge(o FrameRateRange) FrameRateRange {
	switch {
	case o.IsZero():
		return r
	case r.IsZero():
		return o
	}
	return FrameRateRange{
		Min:       min(r.Min, o.Min),
		Max:       max(r.Max, o.Max),
		Preferred: max(r.Preferred, o.Preferred),
	}
}

// TimingProtocol holds the timing parameters shared by every animation kind.
type TimingProtocol struct {
	Duration       time.Duration  `json:"duration" yaml:"duration"`
	StartDelay     time.Duration  `json:"start_delay" yaml:"start_delay"`
	Speed          float64        `json:"speed" yaml:"speed"`
	RepeatCount    int            `json:"repeat_count" yaml:"repeat_count"`
	AutoReverse    bool           `json:"auto_reverse" yaml:"auto_reverse"`
	Forward        bool           `json:"forward" yaml:"forward"`
	FillMode       FillMode       `json:"fill_mode" yaml:"fill_mode"`
	RepeatCallback bool           `json:"repeat_callback" yaml:"repeat_callback"`
	FrameRate      FrameRateRange `json:"frame_rate" yaml:"frame_rate"`
}

// DefaultTimingProtocol returns a 300ms, single-run, forward protocol that
// holds its end value.
func DefaultTimingProtocol() TimingProtocol {
	return TimingProtocol{
		Duration:    300 * time.Millisecond,
		Speed:       1,
		RepeatCount: 1,
		Forward:     true,
		FillMode:    FillForwards,
	}
}

// ImmediateTimingProtocol returns a zero-duration protocol. Property writes
// inside a scope using it are applied without animation.
func ImmediateTimingProtocol() TimingProtocol {
	p := DefaultTimingProtocol()
	p.Duration = 0
	return p
}

// IsInfinite reports whether the protocol repeats forever.
func (p TimingProtocol) IsInfinite() bool { return p.RepeatCount == RepeatForever }

// Validate reports ErrInvalidProtocol for negative or non-finite times and
// speeds, a repeat count below RepeatForever and an unordered frame rate.
// A zero Speed or RepeatCount means 1.
func (p TimingProtocol) Validate() error {
	switch {
	case p.Duration < 0:
		return fmt.Errorf("duration %v: %w", p.Duration, ErrInvalidProtocol)
	case p.StartDelay < 0:
		return fmt.Errorf("start delay %v: %w", p.StartDelay, ErrInvalidProtocol)
	case math.IsNaN(p.Speed) || math.IsInf(p.Speed, 0) || p.Speed < 0:
		return fmt.Errorf("speed %v: %w", p.Speed, ErrInvalidProtocol)
	case p.RepeatCount < RepeatForever:
		return fmt.Errorf("repeat count %d: %w", p.RepeatCount, ErrInvalidProtocol)
	case !p.FrameRate.IsValid():
		return fmt.Errorf("frame rate %+v: %w", p.FrameRate, ErrInvalidProtocol)
	}
	return nil
}

// --- Fraction timer ---

// fractionTimer turns frame timestamps into progress. All times are
// nanoseconds of whatever clock the caller ticks with.
type fractionTimer struct {
	TimingProtocol

	scale         float64 // global animation scale, divides speed
	lastFrameTime int64   // -1 until the first frame
	runningTime   float64 // ns of play, start delay included
	reversed      bool    // direction flipped after start
	repeatIndex   int     // cycle reached on the last evaluation
	reverseCycle  bool    // last evaluated cycle runs backwards (auto-reverse)
}

func newFractionTimer(p TimingProtocol) fractionTimer {
	if p.Speed == 0 {
		p.Speed = 1
	}
	if p.RepeatCount == 0 {
		p.RepeatCount = 1
	}
	return fractionTimer{TimingProtocol: p, scale: 1, lastFrameTime: -1}
}

func (t *fractionTimer) setScale(s float64) {
	if s > 0 {
		t.scale = s
	}
}

func (t *fractionTimer) startFraction() float64 {
	if t.Forward {
		return 0
	}
	return 1
}

// endFraction is the fraction the animation stops on: the natural end of
// the last cycle, or the start when played in reverse.
func (t *fractionTimer) endFraction() float64 {
	if t.reversed {
		return t.startFraction()
	}
	f := 1.0
	if t.AutoReverse && t.RepeatCount > 0 && t.RepeatCount%2 == 0 {
		f = 0
	}
	if !t.Forward {
		f = 1 - f
	}
	return f
}

func (t *fractionTimer) durationNs() float64 {
	return float64(t.Duration.Nanoseconds())
}

func (t *fractionTimer) delayNs() float64 {
	return float64(t.StartDelay.Nanoseconds())
}

// advance consumes the time since the previous frame.
func (t *fractionTimer) advance(now int64) {
	if t.lastFrameTime < 0 {
		t.lastFrameTime = now
		return
	}
	delta := float64(now-t.lastFrameTime) * t.Speed / t.scale
	t.lastFrameTime = now
	if t.reversed {
		t.runningTime -= delta
	} else {
		t.runningTime += delta
	}
}

// mapCycle converts progress inside cycle i to a presented fraction.
func (t *fractionTimer) mapCycle(i int, f float64) float64 {
	t.reverseCycle = t.AutoReverse && i%2 == 1
	if t.reverseCycle {
		f = 1 - f
	}
	if !t.Forward {
		f = 1 - f
	}
	return f
}

// fraction evaluates fraction-based timing at now. repeats counts the cycle
// boundaries crossed since the previous evaluation when repeat callbacks
// are on; the end of the last cycle is a finish, not a repeat.
func (t *fractionTimer) fraction(now int64) (f float64, inDelay, finished bool, repeats int) {
	t.advance(now)
	play := t.runningTime - t.delayNs()
	if !t.reversed && play < 0 {
		return t.startFraction(), true, false, 0
	}
	dur := t.durationNs()
	if dur <= 0 {
		return t.endFraction(), false, true, 0
	}
	if t.reversed && play <= 0 {
		t.runningTime = t.delayNs()
		return t.startFraction(), false, true, 0
	}
	if !t.IsInfinite() && play >= dur*float64(t.RepeatCount) {
		repeats = t.crossed(t.RepeatCount - 1)
		t.mapCycle(t.repeatIndex, 1)
		return t.endFraction(), false, true, repeats
	}
	i := int(play / dur)
	repeats = t.crossed(i)
	f = t.mapCycle(i, (play-float64(i)*dur)/dur)
	return f, false, false, repeats
}

// crossed moves the repeat index to i and returns the boundaries passed on
// the way, or 0 without repeat callbacks.
func (t *fractionTimer) crossed(i int) int {
	n := i - t.repeatIndex
	if n < 0 {
		n = -n
	}
	t.repeatIndex = i
	if !t.RepeatCallback {
		return 0
	}
	return n
}

// playTime evaluates time-based timing at now. The returned duration is the
// time played since the current round began.
func (t *fractionTimer) playTime(now int64) (time.Duration, bool) {
	t.advance(now)
	play := t.runningTime - t.delayNs()
	if play < 0 {
		return 0, true
	}
	return time.Duration(play), false
}

// seek moves the running time so that the current cycle presents f.
func (t *fractionTimer) seek(f float64) {
	f = math.Max(0, math.Min(1, f))
	if !t.Forward {
		f = 1 - f
	}
	if t.AutoReverse && t.repeatIndex%2 == 1 {
		f = 1 - f
	}
	t.runningTime = t.delayNs() + (float64(t.repeatIndex)+f)*t.durationNs()
}

// setReversed flips playback for the rest of the run.
func (t *fractionTimer) setReversed(r bool) {
	t.reversed = r
}

// remainingDelay is the part of the start delay not yet played.
func (t *fractionTimer) remainingDelay() time.Duration {
	d := t.delayNs() - t.runningTime
	if d <= 0 {
		return 0
	}
	return time.Duration(d)
}

// setRemainingDelay restarts the delay window with d left to wait.
func (t *fractionTimer) setRemainingDelay(d time.Duration) {
	t.StartDelay = d
	t.runningTime = 0
}

// finishRound records the end of one spring round: the repeat index moves
// on and play time restarts at zero.
func (t *fractionTimer) finishRound() {
	t.repeatIndex++
	t.reverseCycle = t.AutoReverse && t.repeatIndex%2 == 1
	t.runningTime = t.delayNs()
}

// roundsLeft is the number of rounds still to play, or -1 when infinite.
func (t *fractionTimer) roundsLeft() int {
	if t.IsInfinite() {
		return -1
	}
	return max(t.RepeatCount-t.repeatIndex, 0)
}

// reset discards accumulated play time but keeps the last frame time.
func (t *fractionTimer) reset() {
	t.runningTime = 0
	t.repeatIndex = 0
	t.reverseCycle = false
}
