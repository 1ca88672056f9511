package bot

import (
	"errors"

	"coding/internal/domain"
)

// ErrNoMove is returned when a menu offers nothing playable.
var ErrNoMove = errors.New("no playable option")

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(game *domain.Game, player *domain.Player, menu domain.Menu) (domain.Selection, error)
}
