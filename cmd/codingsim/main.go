// Command codingsim plays bots-only games locally and logs every event.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/pflag"

	"coding/internal/config"
)

func main() {
	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	path, _ := flags.GetString("config")

	settings, err := LoadSettings(path, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
	}

	logger, closeLog, err := newLogger(settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(logger, settings); err != nil {
		logger.Error("simulation failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(logger *slog.Logger, settings Settings) error {
	cfg := config.Default()
	if settings.GameConfig != "" {
		data, err := os.ReadFile(settings.GameConfig)
		if err != nil {
			return fmt.Errorf("read game config: %w", err)
		}
		if cfg, err = config.ParseGameConfig(data); err != nil {
			return err
		}
	}
	if settings.Cards != "" {
		cfg.CardsPath = settings.Cards
	}
	cards, err := config.LoadCardSet(cfg.CardsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("batch started", "seed", settings.Seed, "games", settings.Games, "players", settings.Players)
	stats, _, err := RunBatch(ctx, logger, cfg, cards, settings.Players, settings.Games, settings.Seed)
	if err != nil {
		return err
	}

	for _, level := range sortedLevels(stats.WinsByLevel) {
		logger.Info("wins by level", "level", level, "wins", stats.WinsByLevel[level])
	}
	logger.Info("batch finished", "games", stats.Games, "mean_score", stats.MeanScore, "stalls", stats.Stalls)
	return nil
}

// newLogger fans records out to a text handler on stderr and, when
// configured, a JSON handler on a file.
func newLogger(settings Settings) (*slog.Logger, func(), error) {
	level := new(slog.LevelVar)
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", settings.LogLevel, err)
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closeLog := func() {}
	if settings.LogFile != "" {
		f, err := os.Create(settings.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeLog = func() { _ = f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), closeLog, nil
}
