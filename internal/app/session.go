package app

import (
	"context"
	"errors"
	"fmt"

	"coding/internal/domain"
)

var ErrNoDecider = errors.New("no decider for participant")

// Decider answers decision points on behalf of one participant.
type Decider interface {
	Decide(ctx context.Context, game *domain.Game, turn Turn) (domain.Selection, error)
}

// PlayGame drives a whole session synchronously, asking deciders for every
// decision point. observe, when non-nil, receives every event in order.
func (s *Service) PlayGame(ctx context.Context, names []string, deciders map[domain.Color]Decider, observe func(Event)) (*domain.Game, error) {
	emit := func(events []Event) {
		if observe == nil {
			return
		}
		for _, ev := range events {
			observe(ev)
		}
	}

	game, events, err := s.StartGame(names)
	if err != nil {
		return nil, err
	}
	emit(events)

	for !s.GameOver(game) {
		events, err := s.StartRound(game)
		if err != nil {
			return game, err
		}
		emit(events)

		if err := s.assemble(ctx, game, deciders, emit); err != nil {
			return game, err
		}

		events, err = s.RunProgram(game)
		if err != nil {
			return game, err
		}
		emit(events)

		events, err = s.EndRound(game)
		if err != nil {
			return game, err
		}
		emit(events)
	}

	events, err = s.EndGame(game)
	if err != nil {
		return game, err
	}
	emit(events)
	return game, nil
}

func (s *Service) assemble(ctx context.Context, game *domain.Game, deciders map[domain.Color]Decider, emit func([]Event)) error {
	rejected := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		turn, ok := s.PendingTurn(game)
		if !ok {
			return nil
		}
		decider, ok := deciders[turn.Color]
		if !ok {
			return fmt.Errorf("%s: %w", turn.Color, ErrNoDecider)
		}

		sel, err := decider.Decide(ctx, game, turn)
		if err != nil {
			return fmt.Errorf("%s decide: %w", turn.Color, err)
		}
		events, err := s.PlayCommand(game, turn.Color, sel)
		if errors.Is(err, domain.ErrInvalidPlay) {
			rejected++
			if rejected > maxRejectedDecisions {
				return fmt.Errorf("%s gave %d invalid plays in a row: %w", turn.Color, rejected, err)
			}
			continue
		}
		if err != nil {
			return err
		}
		rejected = 0
		emit(events)
	}
}
