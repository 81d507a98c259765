package simulator

import (
	"math"
	"math/rand"
)

// Pattern shapes the delay, in minutes, of the i-th of n completed
// shipments (oldest first).
type Pattern interface {
	Delay(rng *rand.Rand, i, n int) float64
	Name() string
}

var (
	PatternSteady      Pattern = &SteadyPattern{Base: 8, Variance: 5}
	PatternGradualRise Pattern = &GradualRisePattern{Start: 5, Rise: 40, Variance: 4}
	PatternWeekly      Pattern = &WeeklyPattern{Base: 10, WeekendExtra: 25, Variance: 5}
	PatternRandom      Pattern = &RandomPattern{Min: -20, Max: 60}
	PatternSineWave    Pattern = &SineWavePattern{Base: 15, Amplitude: 12, Period: 12}
)

func ParsePattern(name string) Pattern {
	switch name {
	case "gradual_rise":
		return PatternGradualRise
	case "weekly":
		return PatternWeekly
	case "random":
		return PatternRandom
	case "sine_wave":
		return PatternSineWave
	default:
		return PatternSteady
	}
}

func noise(rng *rand.Rand, variance float64) float64 {
	return (rng.Float64()*2 - 1) * variance
}

// SteadyPattern - stable route with small jitter
type SteadyPattern struct {
	Base     float64
	Variance float64
}

func (p *SteadyPattern) Delay(rng *rand.Rand, i, n int) float64 {
	return p.Base + noise(rng, p.Variance)
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// GradualRisePattern - route that degrades over the history, the case
// the regression component is meant to catch
type GradualRisePattern struct {
	Start    float64
	Rise     float64
	Variance float64
}

func (p *GradualRisePattern) Delay(rng *rand.Rand, i, n int) float64 {
	progress := 0.0
	if n > 1 {
		progress = float64(i) / float64(n-1)
	}
	return p.Start + p.Rise*progress + noise(rng, p.Variance)
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// WeeklyPattern - every seventh shipment lands on a congested day
type WeeklyPattern struct {
	Base         float64
	WeekendExtra float64
	Variance     float64
}

func (p *WeeklyPattern) Delay(rng *rand.Rand, i, n int) float64 {
	delay := p.Base + noise(rng, p.Variance)
	if i%7 == 5 || i%7 == 6 {
		delay += p.WeekendExtra
	}
	return delay
}

func (p *WeeklyPattern) Name() string {
	return "weekly"
}

// RandomPattern - unpredictable early and late arrivals
type RandomPattern struct {
	Min float64
	Max float64
}

func (p *RandomPattern) Delay(rng *rand.Rand, i, n int) float64 {
	return p.Min + rng.Float64()*(p.Max-p.Min)
}

func (p *RandomPattern) Name() string {
	return "random"
}

// SineWavePattern - smooth oscillation over a period measured in shipments
type SineWavePattern struct {
	Base      float64
	Amplitude float64
	Period    int
}

func (p *SineWavePattern) Delay(rng *rand.Rand, i, n int) float64 {
	period := p.Period
	if period <= 0 {
		period = 12
	}
	phase := float64(i) / float64(period) * 2 * math.Pi
	return p.Base + math.Sin(phase)*p.Amplitude
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}
