package match

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Weights are the relative weights of the four scoring components. They are
// not required to sum to 1; the composite score is a plain weighted sum and
// callers choose the scale. The defaults are the tuned operating point.
type Weights struct {
	Title  float64 `yaml:"title"`  // default: 0.25
	Author float64 `yaml:"author"` // default: 0.25
	Date   float64 `yaml:"date"`   // default: 0.2
	Bonus  float64 `yaml:"bonus"`  // default: 0.3
}

// Config holds all configuration for candidate selection, scoring, and batch
// matching.
type Config struct {
	Weights Weights `yaml:"weights"`

	// High-similarity bonus applied inside the title and author sub-scores
	HighSimThreshold float64 `yaml:"high_sim_threshold"` // default: 85
	HighSimBonus     float64 `yaml:"high_sim_bonus"`     // default: 100
	KeywordPenalty   float64 `yaml:"keyword_penalty"`    // default: 50

	// Bonus-field values (accumulated, capped at 100 before weighting)
	DOIBonus     float64 `yaml:"doi_bonus"`     // default: 100
	JournalBonus float64 `yaml:"journal_bonus"` // default: 50
	PagesBonus   float64 `yaml:"pages_bonus"`   // default: 20

	// Candidate selection and ranking
	MaxCandidates int     `yaml:"max_candidates"` // default: 500
	TopN          int     `yaml:"top_n"`          // default: 5
	MinScore      float64 `yaml:"min_score"`      // default: 40

	// Execution
	Workers int    `yaml:"workers"` // default: 0 (GOMAXPROCS)
	Backend string `yaml:"backend"` // "auto" (default), "parallel", "serial"
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			Title:  0.25,
			Author: 0.25,
			Date:   0.2,
			Bonus:  0.3,
		},
		HighSimThreshold: 85,
		HighSimBonus:     100,
		KeywordPenalty:   50,
		DOIBonus:         100,
		JournalBonus:     50,
		PagesBonus:       20,
		MaxCandidates:    500,
		TopN:             5,
		MinScore:         40,
		Workers:          0,
		Backend:          BackendAuto,
	}
}

// rawConfig aliases Config for decoding without recursing into UnmarshalYAML.
type rawConfig Config

// UnmarshalYAML decodes a matcher section over a default-populated config.
// Keys absent from the file keep their defaults; an explicit zero in the file
// survives (min_score: 0 means "keep everything", not "use the default").
// Defaults are applied only here and in DefaultConfig, never at construction.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	*c = *DefaultConfig()
	return value.Decode((*rawConfig)(c))
}

// Validate rejects malformed configuration at call time. Invalid values are
// never silently coerced.
func (c *Config) Validate() error {
	if c.Weights.Title < 0 || c.Weights.Author < 0 || c.Weights.Date < 0 || c.Weights.Bonus < 0 {
		return fmt.Errorf("match config: weights must be non-negative, got %+v", c.Weights)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("match config: top_n must be positive, got %d", c.TopN)
	}
	if c.MinScore < 0 {
		return fmt.Errorf("match config: min_score must be non-negative, got %v", c.MinScore)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("match config: max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.Workers < 0 {
		return fmt.Errorf("match config: workers must be non-negative, got %d", c.Workers)
	}
	switch c.Backend {
	case BackendAuto, BackendParallel, BackendSerial:
	default:
		return fmt.Errorf("match config: unknown backend %q (supported: auto, parallel, serial)", c.Backend)
	}
	return nil
}
