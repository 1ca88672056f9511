package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"coding/internal/app"
	"coding/internal/bot"
	"coding/internal/config"
	"coding/internal/domain"
)

// GameResult is the outcome of one simulated game.
type GameResult struct {
	RunID   string
	Seed    int64
	Winners []domain.Color
	Score   int
	Rounds  int
	Stalls  int
}

// BatchStats aggregates results over a batch.
type BatchStats struct {
	Games       int
	WinsByColor map[domain.Color]int
	WinsByLevel map[string]int
	MeanScore   float64
	Stalls      int
}

// RunBatch plays games sequentially, deriving each game's seed from seed.
func RunBatch(ctx context.Context, logger *slog.Logger, cfg config.GameConfig, cards config.CardSet, levels []string, games int, seed int64) (BatchStats, []GameResult, error) {
	rng := rand.New(rand.NewSource(seed))
	results := make([]GameResult, 0, games)
	for i := 0; i < games; i++ {
		res, err := RunSingleGame(ctx, logger, cfg, cards, levels, rng.Int63())
		if err != nil {
			return BatchStats{}, results, fmt.Errorf("game %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return aggregateResults(results, levels), results, nil
}

// RunSingleGame plays one bots-only game and logs every event.
func RunSingleGame(ctx context.Context, logger *slog.Logger, cfg config.GameConfig, cards config.CardSet, levels []string, seed int64) (GameResult, error) {
	rng := rand.New(rand.NewSource(seed))
	result := GameResult{RunID: uuid.NewString(), Seed: seed}
	log := logger.With("run", result.RunID)

	names := make([]string, len(levels))
	deciders := make(map[domain.Color]app.Decider, len(levels))
	for seat, name := range levels {
		level, err := bot.ParseLevel(name)
		if err != nil {
			return result, err
		}
		brain, err := bot.NewBrain(level, rng)
		if err != nil {
			return result, err
		}
		color := domain.Colors[seat]
		names[seat] = fmt.Sprintf("%s-%s", level, color)
		deciders[color] = &bot.Agent{Color: color, Name: names[seat], Strategy: brain}
	}

	svc := app.NewService(cfg, cards, rng)
	game, err := svc.PlayGame(ctx, names, deciders, func(ev app.Event) {
		switch p := ev.Payload.(type) {
		case app.RoundStalledPayload:
			result.Stalls++
		case app.GameEndedPayload:
			result.Winners, result.Score = p.Winners, p.Score
		}
		logEvent(log, ev)
	})
	if game != nil {
		result.Rounds = game.Round
	}
	if err != nil {
		return result, err
	}
	log.Info("game finished", "seed", seed, "winners", result.Winners, "score", result.Score)
	return result, nil
}

func logEvent(log *slog.Logger, ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		log.Info("game started", "players", len(p.Players), "first_player", p.FirstPlayer, "rounds", p.Rounds)
	case app.RoundStartedPayload:
		log.Info("round started", "round", p.Round, "first_player", p.FirstPlayer)
	case app.HandDealtPayload:
		log.Debug("hand dealt", "color", p.Color, "hand", len(p.Hand), "dealt", p.Dealt, "bonus", p.Bonus)
	case app.TilesDrawnPayload:
		log.Debug("tiles drawn", "color", p.Color, "tiles", len(p.Tiles))
	case app.TurnOfferedPayload:
		log.Debug("turn offered", "color", p.Turn.Color, "options", len(p.Turn.Menu))
	case app.CommandPlayedPayload:
		log.Debug("command played", "color", p.Color, "line", p.Line, "command", p.Command, "var", p.Var)
	case app.RoundAssembledPayload:
		for _, line := range p.Listing {
			log.Debug("program", "round", p.Round, "line", line)
		}
	case app.RoundStalledPayload:
		log.Warn("round stalled", "round", p.Round, "available", p.Available)
	case app.ProgramRunPayload:
		for _, step := range p.Trace {
			log.Debug("executed", "line", step.Line, "command", step.Command, "target", step.Target, "effect", step.Effect)
		}
		log.Info("program run", "round", p.Round, "steps", len(p.Trace), "registers", p.Registers)
	case app.ResourceSentPayload:
		log.Info("resource sent", "line", p.Line, "color", p.Transfer.Color, "resource", p.Transfer.Resource, "amount", p.Transfer.Amount)
	case app.FirstPlayerChangedPayload:
		log.Info("first player changed", "from", p.From, "to", p.To)
	case app.RoundEndedPayload:
		for _, s := range p.Standings {
			log.Info("standing", "round", p.Round, "color", s.Color, "cpu", s.Resources[domain.ResourceCPU], "ram", s.Resources[domain.ResourceRAM], "vp", s.Resources[domain.ResourceVP])
		}
	case app.GameEndedPayload:
		log.Info("game ended", "winners", p.Winners, "score", p.Score)
	}
}

func aggregateResults(results []GameResult, levels []string) BatchStats {
	stats := BatchStats{
		Games:       len(results),
		WinsByColor: make(map[domain.Color]int),
		WinsByLevel: make(map[string]int),
	}
	total := 0
	for _, r := range results {
		total += r.Score
		stats.Stalls += r.Stalls
		for _, c := range r.Winners {
			stats.WinsByColor[c]++
			if seat := c.Seat(); seat >= 0 && seat < len(levels) {
				stats.WinsByLevel[levels[seat]]++
			}
		}
	}
	if len(results) > 0 {
		stats.MeanScore = float64(total) / float64(len(results))
	}
	return stats
}

// sortedLevels returns the levels with wins in name order for stable output.
func sortedLevels(wins map[string]int) []string {
	out := make([]string, 0, len(wins))
	for level := range wins {
		out = append(out, level)
	}
	sort.Strings(out)
	return out
}
