package bot

import (
	"context"
	"fmt"

	"coding/internal/app"
	"coding/internal/domain"
)

// Agent represents an autonomous participant.
type Agent struct {
	Color    domain.Color
	Name     string
	Strategy Brain
}

// Decide answers a decision point. It satisfies app.Decider.
func (a *Agent) Decide(ctx context.Context, game *domain.Game, turn app.Turn) (domain.Selection, error) {
	if err := ctx.Err(); err != nil {
		return domain.Selection{}, err
	}
	player, ok := game.Player(turn.Color)
	if !ok {
		return domain.Selection{}, fmt.Errorf("agent %s: %w", a.Name, app.ErrUnknownPlayer)
	}
	return a.Strategy.CalculateMove(game, player, turn.Menu)
}
