package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelGreedy
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelRandom:
		return "random"
	case BotLevelGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel resolves a level name such as "random" or "greedy".
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "easy", "":
		return BotLevelRandom, nil
	case "greedy", "hard":
		return BotLevelGreedy, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return NewRandomBot(rng), nil
	case BotLevelGreedy:
		return &GreedyBot{Tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
