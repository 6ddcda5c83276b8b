// Package anonymizer blurs the endpoints of a GPS trace before it is shared anonymously.
//
// Trimming is deterministic and depends only on the number of points. Fuzzing of the
// displayed start/end points is random, so two calls on the same input return the same
// trace but different endpoint offsets. Anonymizing an already anonymized trace trims it
// again; the operation is not idempotent.
package anonymizer

import (
	"math/rand/v2"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
)

// ApproximateLocation replaces the place name of every fuzzed point.
const ApproximateLocation = "Approximate location"

const (
	// Traces up to this length keep only their middle half.
	shortTraceLimit = 20

	// Width of the uniform offset interval in degrees, i.e. offsets fall in [-0.001, +0.001].
	// Not corrected for latitude: east-west displacement shrinks toward the poles.
	fuzzWidthDegrees = 0.002
)

// RandFunc returns a uniformly distributed value in [0, 1).
type RandFunc func() float64

type Anonymizer struct {
	rand RandFunc
}

type Option func(*Anonymizer)

// WithRand replaces the random source. Tests use it to get exact offsets.
func WithRand(fn RandFunc) Option {
	return func(a *Anonymizer) {
		if fn != nil {
			a.rand = fn
		}
	}
}

// New returns an Anonymizer backed by the math/rand/v2 global generator,
// which is safe for concurrent use.
func New(opts ...Option) *Anonymizer {
	a := &Anonymizer{rand: rand.Float64}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Anonymize trims both ends of the trace and fuzzes the start and end points.
// Input is never modified and no validation is performed.
func (a *Anonymizer) Anonymize(trace models.Trace, start, end models.GeoPoint) models.AnonymizedRoute {
	return models.AnonymizedRoute{
		Trace: Trim(trace),
		Start: a.Fuzz(start),
		End:   a.Fuzz(end),
	}
}

// Fuzz displaces lat and lng by independent uniform offsets and drops the place name.
func (a *Anonymizer) Fuzz(p models.GeoPoint) models.GeoPoint {
	return models.GeoPoint{
		Lat:  p.Lat + a.offset(),
		Lng:  p.Lng + a.offset(),
		Name: ApproximateLocation,
	}
}

func (a *Anonymizer) offset() float64 {
	return (a.rand() - 0.5) * fuzzWidthDegrees
}

// TrimBounds returns the half-open range [from, to) of points kept for a trace of n points.
// Short traces keep the middle 50%, longer ones drop 10% at each end.
func TrimBounds(n int) (from, to int) {
	if n <= 0 {
		return 0, 0
	}

	if n <= shortTraceLimit {
		from, to = n/4, n*3/4
	} else {
		cut := n / 10
		from, to = cut, n-cut
	}

	if to < from {
		to = from
	}
	return from, to
}

// Trim returns a copy of the kept part of the trace. The result may be empty.
func Trim(trace models.Trace) models.Trace {
	from, to := TrimBounds(len(trace))

	out := make(models.Trace, to-from)
	copy(out, trace[from:to])
	return out
}
