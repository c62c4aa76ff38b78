package game

import (
	"image"
	"math"
	"math/rand"
	"time"
)

// PathPoint is one cursor sample, At is the offset from the start of the movement.
type PathPoint struct {
	X, Y int
	At   time.Duration
}

// Motion shapes generated cursor paths.
type Motion struct {
	// Fitts law: duration = Intercept + Slope*log2(d/TargetWidth+1), in milliseconds
	Intercept   float64
	Slope       float64
	TargetWidth float64

	// The first stroke lands at Reach times the distance, a correction covers the rest
	ReachMin, ReachMax float64
	OvershootChance    float64
	Curvature          float64
	Drift              float64
	SampleEvery        time.Duration
}

var DefaultMotion = Motion{
	Intercept:       30,
	Slope:           45,
	TargetWidth:     20,
	ReachMin:        0.92,
	ReachMax:        0.97,
	OvershootChance: 0.15,
	Curvature:       0.03,
	Drift:           1.0,
	SampleEvery:     8 * time.Millisecond,
}

// logNormalProgress is the share of a sigma-lognormal stroke completed at t.
func logNormalProgress(t, onset, mu, sigma float64) float64 {
	if t <= onset {
		return 0
	}

	return 0.5 * (1 + math.Erf((math.Log(t-onset)-mu)/(sigma*math.Sqrt2)))
}

// HumanPath builds a curved, slightly noisy path from -> to. The last point is always exactly to.
func (m Motion) HumanPath(rnd *rand.Rand, from, to image.Point) []PathPoint {
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return []PathPoint{{X: to.X, Y: to.Y}}
	}
	uniform := func(lo, hi float64) float64 { return lo + rnd.Float64()*(hi-lo) }

	tx, ty := dx/dist, dy/dist
	nx, ny := -ty, tx

	total := (m.Intercept + m.Slope*math.Log2(dist/m.TargetWidth+1)) * math.Exp(rnd.NormFloat64()*0.08)
	total = max(total, 25)

	reach := uniform(m.ReachMin, m.ReachMax)
	if rnd.Float64() < m.OvershootChance {
		reach = uniform(1.02, 1.08)
	}
	sigma := uniform(0.18, 0.28)
	mu := math.Log(total*0.35) + sigma*sigma

	corrOnset := total * uniform(0.55, 0.68)
	corrSigma := uniform(0.12, 0.2)
	corrMu := math.Log(total*0.15) + corrSigma*corrSigma
	residual := dist * (1 - reach)

	bend := dist * m.Curvature * math.Max(-2.5, math.Min(2.5, rnd.NormFloat64()))
	driftX, driftY := 0.0, 0.0

	step := float64(m.SampleEvery) / float64(time.Millisecond)
	end := total * 1.15
	points := make([]PathPoint, 0, int(end/step)+2)
	for t := 0.0; t < end; t += step * uniform(0.6, 1.4) {
		s := logNormalProgress(t, 0, mu, sigma)
		along := dist*reach*s + residual*logNormalProgress(t, corrOnset, corrMu, corrSigma)
		// bend peaks early in the stroke and vanishes at both ends
		arc := bend * s * s * math.Pow(1-s, 3) / (0.4 * 0.4 * 0.216)

		dts := step / 1000
		driftX += -3.5*driftX*dts + m.Drift*math.Sqrt(dts)*rnd.NormFloat64()
		driftY += -3.5*driftY*dts + m.Drift*math.Sqrt(dts)*rnd.NormFloat64()

		points = append(points, PathPoint{
			X:  from.X + int(math.Round(tx*along+nx*arc+driftX)),
			Y:  from.Y + int(math.Round(ty*along+ny*arc+driftY)),
			At: time.Duration(t * float64(time.Millisecond)),
		})
	}

	return append(points, PathPoint{X: to.X, Y: to.Y, At: time.Duration(end * float64(time.Millisecond))})
}
