// Package movement converts world positions and speeds into distances,
// travel durations and time-parameterized interpolated positions.
package movement

import (
	"fmt"
	"math"
	"time"

	"github.com/rathgar/idlebot/internal/model"
)

// Movement speeds in yards per second. Domain constants, not config.
const (
	SpeedWalk     = 2.5
	SpeedRun      = 7.0
	SpeedMount60  = 14.0
	SpeedMount100 = 21.0
	SpeedSwim     = 4.72
	SpeedFlight   = 32.5
)

// TravelInfo describes one computed journey.
type TravelInfo struct {
	Distance float64
	Duration time.Duration
	Speed    float64
	From     model.Position
	To       model.Position
}

// TravelTime computes the journey descriptor between two points.
// Speed must be positive; the named speed constants always are.
func TravelTime(from, to model.Position, speed float64) TravelInfo {
	distance := from.Distance(to)
	return TravelInfo{
		Distance: distance,
		Duration: time.Duration(distance / speed * float64(time.Second)),
		Speed:    speed,
		From:     from,
		To:       to,
	}
}

// PositionAtTime returns the interpolated position after elapsed time
// of straight-line travel. Progress is clamped to [0,1].
func PositionAtTime(from, to model.Position, elapsed time.Duration, speed float64) model.Position {
	total := from.Distance(to) / speed
	if total <= 0 {
		return to
	}
	return from.Lerp(to, elapsed.Seconds()/total)
}

// FormatDuration renders a travel duration as "42s" or "2m 5s".
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%ds", int(math.Round(seconds)))
	}
	minutes := int(seconds) / 60
	rest := int(math.Round(seconds)) % 60
	return fmt.Sprintf("%dm %ds", minutes, rest)
}

// Simulation tracks one in-flight journey against the wall clock.
// The start instant is captured at construction.
type Simulation struct {
	info      TravelInfo
	start     time.Time
	now       func() time.Time
	completed bool
}

// NewSimulation starts a travel simulation from the current instant.
func NewSimulation(from, to model.Position, speed float64) *Simulation {
	return NewSimulationWithClock(from, to, speed, time.Now)
}

// NewSimulationWithClock starts a simulation on a caller-supplied
// clock, starting at its current instant.
func NewSimulationWithClock(from, to model.Position, speed float64, now func() time.Time) *Simulation {
	return &Simulation{
		info:  TravelTime(from, to, speed),
		start: now(),
		now:   now,
	}
}

// CurrentPosition returns the interpolated position at this instant.
func (s *Simulation) CurrentPosition() model.Position {
	return PositionAtTime(s.info.From, s.info.To, s.elapsed(), s.info.Speed)
}

// Completed reports whether the journey has finished. Latches to true
// once elapsed time reaches the total duration and never reverts.
func (s *Simulation) Completed() bool {
	if s.completed {
		return true
	}
	s.completed = s.elapsed() >= s.info.Duration
	return s.completed
}

// Progress returns journey progress clamped to [0,1].
func (s *Simulation) Progress() float64 {
	if s.info.Duration <= 0 {
		return 1
	}
	p := float64(s.elapsed()) / float64(s.info.Duration)
	if p > 1 {
		p = 1
	}
	return p
}

// RemainingTime returns the time left, floored at zero.
func (s *Simulation) RemainingTime() time.Duration {
	rest := s.info.Duration - s.elapsed()
	if rest < 0 {
		return 0
	}
	return rest
}

// Info returns the journey descriptor.
func (s *Simulation) Info() TravelInfo {
	return s.info
}

func (s *Simulation) elapsed() time.Duration {
	return s.now().Sub(s.start)
}
