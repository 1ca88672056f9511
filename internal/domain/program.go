package domain

import (
	"fmt"
	"sort"
)

const (
	// LineStep is the spacing of assignable program lines.
	LineStep = 10
	// TerminalLine always holds END and is never assignable.
	TerminalLine = 999
)

// ProgramLine binds an instruction and a tile to a line number.
type ProgramLine struct {
	Number  int
	Command *Command
	Tile    *Tile
}

// Target returns the variable named by the bound tile, or "" when unbound.
func (l *ProgramLine) Target() Variable {
	if l.Tile == nil {
		return ""
	}
	return l.Tile.Var
}

func (l *ProgramLine) String() string {
	return fmt.Sprintf("%3d %s --> %s", l.Number, l.Command, l.Tile)
}

// Program is the line-indexed store of committed instructions for one round.
type Program struct {
	sequence []int
	lines    map[int]*ProgramLine
	ids      *IDSource

	played []*Command
	tiles  []*Tile
}

// NewProgram returns a store with lineCount assignable lines (10, 20, ...)
// and the terminal END line already in place.
func NewProgram(lineCount int, ids *IDSource) *Program {
	p := &Program{
		sequence: make([]int, 0, lineCount),
		lines:    make(map[int]*ProgramLine, lineCount+1),
		ids:      ids,
	}
	for i := 1; i <= lineCount; i++ {
		p.sequence = append(p.sequence, i*LineStep)
	}
	p.lines[TerminalLine] = &ProgramLine{
		Number:  TerminalLine,
		Command: &Command{ID: ids.Next(), Kind: KindEnd},
	}
	return p
}

// Sequence returns the assignable line numbers in ascending order.
func (p *Program) Sequence() []int {
	return append([]int(nil), p.sequence...)
}

// First returns the line execution starts from.
func (p *Program) First() int {
	if len(p.sequence) == 0 {
		return TerminalLine
	}
	return p.sequence[0]
}

// InSequence reports whether n is one of the assignable line numbers.
func (p *Program) InSequence(n int) bool {
	for _, line := range p.sequence {
		if line == n {
			return true
		}
	}
	return false
}

// AvailableLines returns the sequence lines nothing has been committed to.
func (p *Program) AvailableLines() []int {
	out := make([]int, 0, len(p.sequence))
	for _, line := range p.sequence {
		if _, taken := p.lines[line]; !taken {
			out = append(out, line)
		}
	}
	return out
}

// IsAvailable reports whether a command may still be committed to line.
func (p *Program) IsAvailable(line int) bool {
	if _, taken := p.lines[line]; taken {
		return false
	}
	return p.InSequence(line)
}

// Commit binds cmd and tile to line. The line stays unavailable for the rest
// of the round even if its instruction is later overwritten.
func (p *Program) Commit(line int, cmd *Command, tile *Tile) error {
	if !p.IsAvailable(line) {
		return fmt.Errorf("commit to line %d: %w", line, ErrAlreadyCommitted)
	}
	if cmd == nil || tile == nil {
		return fmt.Errorf("commit to line %d: missing command or tile: %w", line, ErrInvalidCommand)
	}
	p.lines[line] = &ProgramLine{Number: line, Command: cmd, Tile: tile}
	p.played = append(p.played, cmd)
	p.tiles = append(p.tiles, tile)
	return nil
}

// OverwriteWithNoop replaces the instruction on a committed line with a NOOP
// and returns the replaced instruction. It reports false when nothing is
// committed on line.
func (p *Program) OverwriteWithNoop(line int) (*Command, bool) {
	pl, ok := p.lines[line]
	if !ok {
		return nil, false
	}
	old := pl.Command
	pl.Command = Noop(p.ids)
	return old, true
}

// Line returns the committed line n.
func (p *Program) Line(n int) (*ProgramLine, bool) {
	pl, ok := p.lines[n]
	return pl, ok
}

// Next returns the smallest committed line number strictly greater than after.
func (p *Program) Next(after int) (int, bool) {
	next, found := 0, false
	for n := range p.lines {
		if n > after && (!found || n < next) {
			next, found = n, true
		}
	}
	return next, found
}

// Lines returns the committed lines ordered by line number.
func (p *Program) Lines() []*ProgramLine {
	numbers := make([]int, 0, len(p.lines))
	for n := range p.lines {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	out := make([]*ProgramLine, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, p.lines[n])
	}
	return out
}

// Listing renders the committed lines in order.
func (p *Program) Listing() []string {
	lines := p.Lines()
	out := make([]string, 0, len(lines))
	for _, pl := range lines {
		out = append(out, pl.String())
	}
	return out
}

// Played returns the instructions and tiles committed by participants this
// round, including instructions that have since been overwritten.
func (p *Program) Played() ([]*Command, []*Tile) {
	return append([]*Command(nil), p.played...), append([]*Tile(nil), p.tiles...)
}

// Clone returns an independent copy of the store. Instructions and tiles are
// shared since they are never mutated; NOOPs made by the copy use a copied id source.
func (p *Program) Clone() *Program {
	ids := *p.ids
	c := &Program{
		sequence: append([]int(nil), p.sequence...),
		lines:    make(map[int]*ProgramLine, len(p.lines)),
		ids:      &ids,
		played:   append([]*Command(nil), p.played...),
		tiles:    append([]*Tile(nil), p.tiles...),
	}
	for n, pl := range p.lines {
		line := *pl
		c.lines[n] = &line
	}
	return c
}
