package pacing

import (
	"math/rand"
	"time"

	"profilescraper/pkg/config"
	"profilescraper/pkg/errors"
)

// Generator produces randomized delay durations for human-plausible pacing.
// It never sleeps itself; callers decide when to suspend on the returned
// duration, which keeps the generator pure and testable.
type Generator struct {
	minDelay  time.Duration
	maxDelay  time.Duration
	scrollMin time.Duration
	scrollMax time.Duration
	clickMin  time.Duration
	clickMax  time.Duration
	rng       *rand.Rand
}

// NewGenerator validates the configured ranges and returns a Generator.
// Inverted bounds are a configuration error, reported here rather than
// per call.
func NewGenerator(cfg *config.PacingConfig) (*Generator, error) {
	if cfg.MinDelay <= 0 || cfg.MinDelay > cfg.MaxDelay {
		return nil, errors.New(errors.ErrorTypeConfiguration,
			"inter-record delay range is invalid: min must be positive and not exceed max")
	}
	if cfg.ScrollDelayMin < 0 || cfg.ScrollDelayMin > cfg.ScrollDelayMax {
		return nil, errors.New(errors.ErrorTypeConfiguration,
			"scroll delay range is invalid: min must not exceed max")
	}
	if cfg.ClickDelayMin < 0 || cfg.ClickDelayMin > cfg.ClickDelayMax {
		return nil, errors.New(errors.ErrorTypeConfiguration,
			"interaction delay range is invalid: min must not exceed max")
	}

	return &Generator{
		minDelay:  cfg.MinDelay,
		maxDelay:  cfg.MaxDelay,
		scrollMin: cfg.ScrollDelayMin,
		scrollMax: cfg.ScrollDelayMax,
		clickMin:  cfg.ClickDelayMin,
		clickMax:  cfg.ClickDelayMax,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// LongDelay draws a uniform duration from the configured inter-record range
func (g *Generator) LongDelay() time.Duration {
	return g.uniform(g.minDelay, g.maxDelay)
}

// ShortDelay draws a uniform duration from [min, max] for in-page
// interactions. Passing zero for both bounds falls back to the configured
// click-delay range.
func (g *Generator) ShortDelay(min, max time.Duration) time.Duration {
	if min == 0 && max == 0 {
		min, max = g.clickMin, g.clickMax
	}
	if min > max {
		min, max = max, min
	}
	return g.uniform(min, max)
}

// ScrollDelay draws a uniform duration from the configured scroll range
func (g *Generator) ScrollDelay() time.Duration {
	return g.uniform(g.scrollMin, g.scrollMax)
}

// ClickDelay draws a uniform duration from the configured click range
func (g *Generator) ClickDelay() time.Duration {
	return g.uniform(g.clickMin, g.clickMax)
}

func (g *Generator) uniform(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(g.rng.Int63n(int64(max-min)+1))
}
