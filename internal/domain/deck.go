package domain

import "math/rand"

// Pile is a shuffled draw source. Drawn items leave the pile; discarded items
// are reshuffled in once the draw side runs dry.
type Pile[T any] struct {
	draw    []T
	discard []T
	rng     *rand.Rand
}

// NewPile returns a pile holding a shuffled copy of items.
func NewPile[T any](items []T, rng *rand.Rand) *Pile[T] {
	p := &Pile[T]{draw: append([]T(nil), items...), rng: rng}
	p.shuffle()
	return p
}

// Draw takes the top item, reshuffling the discards first when needed.
func (p *Pile[T]) Draw() (T, error) {
	if len(p.draw) == 0 {
		if len(p.discard) == 0 {
			var zero T
			return zero, ErrPileExhausted
		}
		p.draw, p.discard = p.discard, nil
		p.shuffle()
	}
	item := p.draw[len(p.draw)-1]
	p.draw = p.draw[:len(p.draw)-1]
	return item, nil
}

// Discard puts items aside until the next reshuffle.
func (p *Pile[T]) Discard(items ...T) {
	p.discard = append(p.discard, items...)
}

// Len returns the number of items left before a reshuffle.
func (p *Pile[T]) Len() int {
	return len(p.draw)
}

// DiscardLen returns the number of discarded items.
func (p *Pile[T]) DiscardLen() int {
	return len(p.discard)
}

func (p *Pile[T]) shuffle() {
	p.rng.Shuffle(len(p.draw), func(i, j int) { p.draw[i], p.draw[j] = p.draw[j], p.draw[i] })
}
