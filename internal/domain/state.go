package domain

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	// PhaseSetup is the state after StartGame and between rounds.
	PhaseSetup Phase = "setup"
	// PhaseAssembling means a participant owes a decision.
	PhaseAssembling Phase = "assembling"
	// PhaseAssembled means every line is taken and the program is ready to run.
	PhaseAssembled Phase = "assembled"
	// PhaseExecuted means the round's program has run.
	PhaseExecuted Phase = "executed"
	// PhaseEnded is the state after the game concludes.
	PhaseEnded Phase = "ended"
)

// Game captures all state for a single game session. It is owned by one
// caller at a time and never mutated concurrently.
type Game struct {
	Phase   Phase
	Round   int
	Machine *Machine

	Commands *Pile[*Command]
	Tiles    *Pile[*Tile]
	IDs      *IDSource

	// CurrentSeat is the seat owing a decision, or -1.
	CurrentSeat int
}

// Player returns the participant seated at color.
func (g *Game) Player(c Color) (*Player, bool) {
	p, ok := g.Machine.Players[c]
	return p, ok
}

// Seated returns the participants in seat order.
func (g *Game) Seated() []*Player {
	out := make([]*Player, 0, len(g.Machine.Players))
	for _, c := range Colors {
		if p, ok := g.Machine.Players[c]; ok {
			out = append(out, p)
		}
	}
	return out
}

// CurrentPlayer returns the participant owing a decision.
func (g *Game) CurrentPlayer() (*Player, bool) {
	if g.CurrentSeat < 0 || g.CurrentSeat >= len(Colors) {
		return nil, false
	}
	return g.Player(Colors[g.CurrentSeat])
}

// FirstPlayer returns the color whose turn opens each round.
func (g *Game) FirstPlayer() Color {
	return g.Machine.FirstPlayer
}
