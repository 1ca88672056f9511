package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var ErrInvalidConfig = errors.New("invalid game config")

type GameConfig struct {
	// Lines is the number of assignable program lines (10, 20, ...).
	Lines            int `json:"lines"`
	Rounds           int `json:"rounds"`
	TileCopies       int `json:"tile_copies"`
	TileHandSize     int `json:"tile_hand_size"`
	CommandHandExtra int `json:"command_hand_extra"`
	// CardsPath points at a JSON or TOML card set. Empty uses the built-in set.
	CardsPath string `json:"cards_path"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotTurnDelaySeconds is how long a bot waits before committing its decision.
	BotTurnDelaySeconds int `json:"bot_turn_delay_seconds"`
}

// Default returns the parameters of the standard game.
func Default() GameConfig {
	return GameConfig{
		Lines:                   12,
		Rounds:                  5,
		TileCopies:              4,
		TileHandSize:            4,
		CommandHandExtra:        2,
		BotAutoFillDelaySeconds: 10,
		BotTurnDelaySeconds:     1,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := ParseGameConfig(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// ParseGameConfig decodes data over the defaults and validates the result.
func ParseGameConfig(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// Validate checks that every parameter can produce a playable game.
func (c GameConfig) Validate() error {
	switch {
	case c.Lines < 1:
		return fmt.Errorf("lines must be positive, got %d: %w", c.Lines, ErrInvalidConfig)
	case c.Rounds < 1:
		return fmt.Errorf("rounds must be positive, got %d: %w", c.Rounds, ErrInvalidConfig)
	case c.TileCopies < 1:
		return fmt.Errorf("tile_copies must be positive, got %d: %w", c.TileCopies, ErrInvalidConfig)
	case c.TileHandSize < 1:
		return fmt.Errorf("tile_hand_size must be positive, got %d: %w", c.TileHandSize, ErrInvalidConfig)
	case c.CommandHandExtra < 0:
		return fmt.Errorf("command_hand_extra must not be negative, got %d: %w", c.CommandHandExtra, ErrInvalidConfig)
	case c.BotAutoFillDelaySeconds < 0 || c.BotTurnDelaySeconds < 0:
		return fmt.Errorf("bot delays must not be negative: %w", ErrInvalidConfig)
	}
	return nil
}
