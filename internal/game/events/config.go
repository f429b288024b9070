package events

import (
	"fmt"
	"time"

	"github.com/quizboard/quizboard-server-go/internal/random"
)

// DefaultAnimationDuration is how long an announcement is expected to play.
const DefaultAnimationDuration = 3 * time.Second

// Config controls when events fire and which one is drawn.
type Config struct {
	TriggerInterval   uint32
	Enabled           []Kind
	Weights           map[Kind]int
	AnimationDuration time.Duration
}

// DefaultConfig enables every kind, weighted Double Points > Reverse Question >
// Score Steal > Hard Reset.
func DefaultConfig() Config {
	return Config{
		TriggerInterval: DefaultTriggerInterval,
		Enabled:         append([]Kind(nil), AllKinds...),
		Weights: map[Kind]int{
			DoublePoints:    40,
			ReverseQuestion: 30,
			ScoreSteal:      20,
			HardReset:       10,
		},
		AnimationDuration: DefaultAnimationDuration,
	}
}

// Validate rejects unknown kinds and negative weights.
func (c Config) Validate() error {
	for _, k := range c.Enabled {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
	}
	for k, w := range c.Weights {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %d for %s", w, k)
		}
	}
	return nil
}

// Selector draws events from a Config using an injected random source.
type Selector struct {
	config Config
	rng    random.Source
}

// NewSelector creates a selector.
func NewSelector(config Config, rng random.Source) *Selector {
	return &Selector{config: config, rng: rng}
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config {
	return s.config
}

// Pick draws one enabled kind by weight, falling back to a uniform draw when
// every enabled weight is zero. It reports false when nothing is enabled.
func (s *Selector) Pick() (Kind, bool) {
	enabled := s.config.Enabled
	if len(enabled) == 0 {
		return "", false
	}

	total := 0
	for _, k := range enabled {
		if w := s.config.Weights[k]; w > 0 {
			total += w
		}
	}
	if total == 0 {
		return enabled[s.rng.Intn(len(enabled))], true
	}

	roll := s.rng.Intn(total)
	for _, k := range enabled {
		w := s.config.Weights[k]
		if w <= 0 {
			continue
		}
		if roll < w {
			return k, true
		}
		roll -= w
	}
	return enabled[len(enabled)-1], true
}
