package bot

import "coding/internal/domain"

// Tuning weighs the outcomes GreedyBot simulates.
type Tuning struct {
	// Resources values one unit of each resource gained by the bot itself.
	Resources map[domain.Resource]float64
	// OpponentFactor scales the same values for resources gained by others;
	// negative values make the bot avoid feeding opponents.
	OpponentFactor float64
	// LeadBonus rewards ending the run as first player.
	LeadBonus float64
}

// DefaultTuning favors VP, then RAM for the next deal, then CPU for the lead.
var DefaultTuning = Tuning{
	Resources: map[domain.Resource]float64{
		domain.ResourceVP:  3.0,
		domain.ResourceRAM: 1.5,
		domain.ResourceCPU: 1.0,
	},
	OpponentFactor: -0.5,
	LeadBonus:      0.5,
}
