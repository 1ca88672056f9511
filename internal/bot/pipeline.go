package bot

import "coding/internal/domain"

// Outcome holds the simulated result of one candidate selection.
type Outcome struct {
	Color      domain.Color
	Before     map[domain.Color]map[domain.Resource]int
	After      map[domain.Color]map[domain.Resource]int
	LeadBefore domain.Color
	LeadAfter  domain.Color
}

// Gain returns how much of r color gained in the simulated run.
func (o *Outcome) Gain(color domain.Color, r domain.Resource) int {
	return o.After[color][r] - o.Before[color][r]
}

// ScoringRule is one term of GreedyBot's evaluation.
type ScoringRule interface {
	Score(o *Outcome, t Tuning) float64
}

// DefaultRules is the evaluation GreedyBot uses when none is configured.
var DefaultRules = []ScoringRule{OwnGainRule{}, OpponentGainRule{}, LeadRule{}}

// OwnGainRule values the resources the bot itself receives.
type OwnGainRule struct{}

func (OwnGainRule) Score(o *Outcome, t Tuning) float64 {
	score := 0.0
	for r, w := range t.Resources {
		score += w * float64(o.Gain(o.Color, r))
	}
	return score
}

// OpponentGainRule values the resources everyone else receives.
type OpponentGainRule struct{}

func (OpponentGainRule) Score(o *Outcome, t Tuning) float64 {
	score := 0.0
	for color := range o.After {
		if color == o.Color {
			continue
		}
		for r, w := range t.Resources {
			score += t.OpponentFactor * w * float64(o.Gain(color, r))
		}
	}
	return score
}

// LeadRule rewards taking the lead and penalizes losing it.
type LeadRule struct{}

func (LeadRule) Score(o *Outcome, t Tuning) float64 {
	switch {
	case o.LeadAfter == o.Color && o.LeadBefore != o.Color:
		return t.LeadBonus
	case o.LeadBefore == o.Color && o.LeadAfter != o.Color:
		return -t.LeadBonus
	}
	return 0
}

func snapshot(m *domain.Machine) map[domain.Color]map[domain.Resource]int {
	out := make(map[domain.Color]map[domain.Resource]int, len(m.Players))
	for color, p := range m.Players {
		resources := make(map[domain.Resource]int, len(p.Resources))
		for r, v := range p.Resources {
			resources[r] = v
		}
		out[color] = resources
	}
	return out
}
