package bot

import (
	"math/rand"
	"time"

	"coding/internal/domain"
)

// RandomBot picks uniformly among playable instructions, then among their
// legal lines and tiles.
type RandomBot struct {
	rng *rand.Rand
}

// NewRandomBot uses rng, or a time-seeded source when rng is nil.
func NewRandomBot(rng *rand.Rand) *RandomBot {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomBot{rng: rng}
}

func (b *RandomBot) CalculateMove(_ *domain.Game, _ *domain.Player, menu domain.Menu) (domain.Selection, error) {
	var playable []domain.Option
	for _, opt := range menu {
		if len(opt.Lines) > 0 && len(opt.Tiles) > 0 {
			playable = append(playable, opt)
		}
	}
	if len(playable) == 0 {
		return domain.Selection{}, ErrNoMove
	}
	opt := playable[b.rng.Intn(len(playable))]
	return domain.Selection{
		Line:    opt.Lines[b.rng.Intn(len(opt.Lines))],
		Command: opt.Command,
		Tile:    opt.Tiles[b.rng.Intn(len(opt.Tiles))],
	}, nil
}

// GreedyBot commits each candidate to a copy of the machine, runs it as if
// no other line were filled, and keeps the best scoring candidate. Ties go
// to the earliest candidate in menu order.
type GreedyBot struct {
	Tuning Tuning
	Rules  []ScoringRule
}

func (b *GreedyBot) CalculateMove(game *domain.Game, player *domain.Player, menu domain.Menu) (domain.Selection, error) {
	candidates := candidates(menu)
	if len(candidates) == 0 {
		return domain.Selection{}, ErrNoMove
	}
	rules := b.Rules
	if rules == nil {
		rules = DefaultRules
	}

	before := snapshot(game.Machine)
	best, bestScore := -1, 0.0
	for i, sel := range candidates {
		m := game.Machine.Clone()
		if err := m.Program.Commit(sel.Line, sel.Command, sel.Tile); err != nil {
			continue
		}
		if _, err := m.Run(); err != nil {
			continue
		}

		outcome := &Outcome{
			Color:      player.Color,
			Before:     before,
			After:      snapshot(m),
			LeadBefore: game.Machine.FirstPlayer,
			LeadAfter:  m.FirstPlayer,
		}
		score := 0.0
		for _, rule := range rules {
			score += rule.Score(outcome, b.Tuning)
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return candidates[0], nil
	}
	return candidates[best], nil
}

// candidates expands a menu into selections, one tile per distinct variable.
func candidates(menu domain.Menu) []domain.Selection {
	var out []domain.Selection
	for _, opt := range menu {
		seen := make(map[domain.Variable]bool, len(domain.Variables))
		var tiles []*domain.Tile
		for _, t := range opt.Tiles {
			if !seen[t.Var] {
				seen[t.Var] = true
				tiles = append(tiles, t)
			}
		}
		for _, line := range opt.Lines {
			for _, t := range tiles {
				out = append(out, domain.Selection{Line: line, Command: opt.Command, Tile: t})
			}
		}
	}
	return out
}
