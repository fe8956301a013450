// SPDX-License-Identifier: MIT

package synth

import (
	"math/rand"
	"strconv"

	"github.com/katalvlaran/lvlot/internal/rng"
)

// Deterministic defaults.
const (
	DefaultGroupKey   = "group"
	DefaultFeatureKey = "X"
	defaultDrift      = 1.0
	defaultAmplitude  = 0.5
	defaultNoiseSigma = 0.3
)

// config aggregates all generator knobs.
type config struct {
	rng         *rand.Rand
	idFn        func(int) string
	groupKey    string
	featureKey  string
	pairwiseKey string // "" → not stored
	weightKey   string // "" → not stored
	drift       float64
	amplitude   float64
	noiseSigma  float64
}

// obsID is the default naming scheme: "obs0", "obs1", ...
func obsID(i int) string { return "obs" + strconv.Itoa(i) }

// newConfig applies options in order over deterministic defaults.
func newConfig(opts ...Option) config {
	cfg := config{
		idFn:       obsID,
		groupKey:   DefaultGroupKey,
		featureKey: DefaultFeatureKey,
		drift:      defaultDrift,
		amplitude:  defaultAmplitude,
		noiseSigma: defaultNoiseSigma,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rng.New(0)
	}

	return cfg
}
