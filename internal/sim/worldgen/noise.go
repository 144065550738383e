// Package worldgen generates the immutable terrain, resource, and
// altered-item layout of a freshly created world (spec.md §1's sphere
// geometry primitive, §3's Tile fields; out of the core's testable
// invariants, but still owned by this module since the core has no other
// source of initial tiles).
package worldgen

import "github.com/ojrac/opensimplex-go"

// NoiseGenerator wraps an OpenSimplex noise source normalized to [0,1],
// carried over from the teacher's worldgen.NoiseGenerator almost
// unchanged: the normalization and octave-summation math is
// domain-independent.
type NoiseGenerator struct {
	noise opensimplex.Noise
	seed  int64
}

// NewNoiseGenerator seeds a generator.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{noise: opensimplex.NewNormalized(seed), seed: seed}
}

// Eval2D returns a value in [0,1] for the given coordinate.
func (n *NoiseGenerator) Eval2D(x, y float64) float64 {
	return n.noise.Eval2(x, y)
}

// Octave2D sums `octaves` layers of Eval2D at increasing frequency and
// decreasing amplitude (persistence), renormalized to [0,1].
func (n *NoiseGenerator) Octave2D(x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxAmplitude := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += n.Eval2D(x*freq, y*freq) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		freq *= 2
	}
	if maxAmplitude == 0 {
		return 0
	}
	return total / maxAmplitude
}
