package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when factor weights are negative or do not
// sum to 1.0.
var ErrInvalidWeights = errors.New("risk: invalid factor weights")

const weightTolerance = 1e-9

// Weights are the coefficients used to combine factor scores.
type Weights struct {
	User      float64 `json:"user" yaml:"user"`
	Network   float64 `json:"network" yaml:"network"`
	Operation float64 `json:"operation" yaml:"operation"`
	Time      float64 `json:"time" yaml:"time"`
	Session   float64 `json:"session" yaml:"session"`
	Device    float64 `json:"device" yaml:"device"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		User:      0.25,
		Network:   0.25,
		Operation: 0.20,
		Time:      0.10,
		Session:   0.10,
		Device:    0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.User + w.Network + w.Operation + w.Time + w.Session + w.Device
}

// Validate checks that every weight is non-negative and that they sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"user": w.User, "network": w.Network, "operation": w.Operation,
		"time": w.Time, "session": w.Session, "device": w.Device,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight %v is negative", ErrInvalidWeights, name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// Factors holds the six per-factor sub-scores, each in [0,100].
type Factors struct {
	User      int `json:"user" yaml:"user"`
	Network   int `json:"network" yaml:"network"`
	Operation int `json:"operation" yaml:"operation"`
	Time      int `json:"time" yaml:"time"`
	Session   int `json:"session" yaml:"session"`
	Device    int `json:"device" yaml:"device"`
}

// Combine returns the weighted score of f clamped to [0,100]. It is a pure
// function of its inputs.
func Combine(f Factors, w Weights) float64 {
	score := w.User*float64(f.User) +
		w.Network*float64(f.Network) +
		w.Operation*float64(f.Operation) +
		w.Time*float64(f.Time) +
		w.Session*float64(f.Session) +
		w.Device*float64(f.Device)
	return math.Max(0, math.Min(100, score))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
