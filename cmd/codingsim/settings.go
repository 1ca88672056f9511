package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"coding/internal/bot"
)

// Settings control a simulation batch. Env var overrides use prefix CODINGSIM_.
type Settings struct {
	Seed       int64
	Games      int
	Players    []string // bot level per seat; at most one per color
	GameConfig string   // JSON game config; empty uses the defaults
	Cards      string   // JSON or TOML card set; overrides the game config
	LogFile    string   // JSON log output in addition to stderr
	LogLevel   string
}

var defaultPlayers = []string{"greedy", "random", "greedy", "random"}

// flagKeys maps settings keys to their command-line flags.
var flagKeys = map[string]string{
	"seed":        "seed",
	"games":       "games",
	"players":     "players",
	"game_config": "game-config",
	"cards":       "cards",
	"log_file":    "log-file",
	"log_level":   "log-level",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("codingsim", pflag.ContinueOnError)
	fs.String("config", "", "TOML settings file (default $CODINGSIM_CONFIG)")
	fs.Int64("seed", 0, "batch seed; 0 picks one from the clock")
	fs.Int("games", 1, "number of games to play")
	fs.StringSlice("players", defaultPlayers, "bot level per seat")
	fs.String("game-config", "", "JSON game config")
	fs.String("cards", "", "JSON or TOML card set")
	fs.String("log-file", "", "also write JSON logs to this file")
	fs.String("log-level", "info", "debug, info, warn or error")
	return fs
}

// LoadSettings resolves settings from, highest first: flags set on the
// command line, CODINGSIM_ env vars, the TOML settings file, defaults.
// The file is path, or CODINGSIM_CONFIG when path is empty. flags may be nil.
func LoadSettings(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()

	v.SetDefault("seed", 0)
	v.SetDefault("games", 1)
	v.SetDefault("players", defaultPlayers)
	v.SetDefault("game_config", "")
	v.SetDefault("cards", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("CODINGSIM_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("CODINGSIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		for key, name := range flagKeys {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	s := Settings{
		Seed:       v.GetInt64("seed"),
		Games:      v.GetInt("games"),
		Players:    v.GetStringSlice("players"),
		GameConfig: v.GetString("game_config"),
		Cards:      v.GetString("cards"),
		LogFile:    v.GetString("log_file"),
		LogLevel:   v.GetString("log_level"),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the batch size and every seat's bot level.
func (s Settings) Validate() error {
	if s.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", s.Games)
	}
	if len(s.Players) < 2 || len(s.Players) > 4 {
		return fmt.Errorf("need 2 to 4 players, got %d", len(s.Players))
	}
	for i, level := range s.Players {
		if _, err := bot.ParseLevel(level); err != nil {
			return fmt.Errorf("player %d: %w", i, err)
		}
	}
	return nil
}
