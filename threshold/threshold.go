// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package threshold computes the per-request minimum relevance a vector-only
// match needs to be accepted.
package threshold

import (
	"math"
	"strings"
)

// Config holds the threshold adjustments.
type Config struct {
	Base float64 `mapstructure:"base" validate:"gte=0,lte=1"`
	Min  float64 `mapstructure:"min" validate:"gte=0,lte=1"`
	Max  float64 `mapstructure:"max" validate:"gte=0,lte=1,gtefield=Min"`

	HighCount      int     `mapstructure:"high_count"`
	HighCountBonus float64 `mapstructure:"high_count_bonus"`
	MidCount       int     `mapstructure:"mid_count"`
	MidCountBonus  float64 `mapstructure:"mid_count_bonus"`
	EmptyPenalty   float64 `mapstructure:"empty_penalty"`

	LongQueryWords       int     `mapstructure:"long_query_words"`
	LongQueryAdjustment  float64 `mapstructure:"long_query_adjustment"`
	SingleWordAdjustment float64 `mapstructure:"single_word_adjustment"`

	AIWeight float64 `mapstructure:"ai_weight"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Base:                 0.5,
		Min:                  0.2,
		Max:                  0.8,
		HighCount:            10,
		HighCountBonus:       0.2,
		MidCount:             5,
		MidCountBonus:        0.1,
		EmptyPenalty:         -0.2,
		LongQueryWords:       5,
		LongQueryAdjustment:  -0.1,
		SingleWordAdjustment: 0.1,
		AIWeight:             0.3,
	}
}

// Decision is a computed threshold and the adjustments that produced it.
type Decision struct {
	Value            float64
	CountAdjustment  float64
	LengthAdjustment float64
	AIAdjustment     float64
}

// Calculator computes thresholds. It is stateless and safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate returns the threshold for a query given how many lexical results it
// produced and optional judge-suggested thresholds in [0,1]. Suggestions that
// are not finite or fall outside [0,1] are ignored.
// More text evidence makes the threshold stricter; none makes it laxer.
func (c *Calculator) Calculate(query string, lexicalCount int, suggestions []float64) Decision {
	d := Decision{}

	switch {
	case lexicalCount >= c.cfg.HighCount:
		d.CountAdjustment = c.cfg.HighCountBonus
	case lexicalCount >= c.cfg.MidCount:
		d.CountAdjustment = c.cfg.MidCountBonus
	case lexicalCount >= 1:
		d.CountAdjustment = 0
	default:
		d.CountAdjustment = c.cfg.EmptyPenalty
	}

	words := len(strings.Fields(query))
	switch {
	case words >= c.cfg.LongQueryWords:
		d.LengthAdjustment = c.cfg.LongQueryAdjustment
	case words == 1:
		d.LengthAdjustment = c.cfg.SingleWordAdjustment
	}

	var sum float64
	n := 0
	for _, s := range suggestions {
		if math.IsNaN(s) || s < 0 || s > 1 {
			continue
		}
		sum += s
		n++
	}
	if n > 0 {
		avg := sum / float64(n)
		d.AIAdjustment = (avg - 0.5) * c.cfg.AIWeight
	}

	value := c.cfg.Base + d.CountAdjustment + d.LengthAdjustment + d.AIAdjustment
	d.Value = math.Round(clamp(value, c.cfg.Min, c.cfg.Max)*1000) / 1000
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
