package world

import (
	"math"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// noiseField samples 2D coherent noise normalised to [0, 1].
type noiseField interface {
	Eval2(x, y float64) float64
}

// perlinField adapts go-perlin's [-1, 1] output to [0, 1].
type perlinField struct {
	p *perlin.Perlin
}

func (f perlinField) Eval2(x, y float64) float64 {
	return clamp01((f.p.Noise2D(x, y) + 1) * 0.5)
}

// newNoiseField returns the configured backend seeded with seed.
func newNoiseField(kind string, seed int64) noiseField {
	if kind == NoisePerlin {
		return perlinField{p: perlin.NewPerlin(2, 2, 3, seed)}
	}
	return opensimplex.NewNormalized(seed)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
// The result stays in [0, 1] because it is an amplitude-weighted mean.
func octaveNoise(noise noiseField, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return clamp01(total / maxVal)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
