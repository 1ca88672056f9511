package domain

import "fmt"

// Option is one menu entry offered at a decision point.
type Option struct {
	Command *Command
	Lines   []int
	Tiles   []*Tile
}

// Menu lists one option per instruction in the participant's hand.
type Menu []Option

// Selection is a participant's answer to a menu.
type Selection struct {
	Line    int
	Command *Command
	Tile    *Tile
}

func (s Selection) String() string {
	return fmt.Sprintf("%3d %s --> %s", s.Line, s.Command, s.Tile)
}

// Menu gathers the legal lines and tiles for every instruction in p's hand.
func (g *Game) Menu(p *Player) Menu {
	available := g.Machine.Program.AvailableLines()
	menu := make(Menu, 0, len(p.Hand))
	for _, cmd := range p.Hand {
		menu = append(menu, Option{
			Command: cmd,
			Lines:   cmd.AllowedLines(available),
			Tiles:   cmd.AllowedTiles(p.Tiles),
		})
	}
	return menu
}

// Playable reports whether at least one option has both a line and a tile.
func (m Menu) Playable() bool {
	for _, opt := range m {
		if len(opt.Lines) > 0 && len(opt.Tiles) > 0 {
			return true
		}
	}
	return false
}

// Select resolves a handle-based selection against p's hand and inventory.
func (p *Player) Select(line, commandID, tileID int) (Selection, error) {
	cmd, ok := p.CommandByID(commandID)
	if !ok {
		return Selection{}, fmt.Errorf("command %d not in hand: %w", commandID, ErrInvalidPlay)
	}
	tile, ok := p.TileByID(tileID)
	if !ok {
		return Selection{}, fmt.Errorf("tile %d not in hand: %w", tileID, ErrInvalidPlay)
	}
	return Selection{Line: line, Command: cmd, Tile: tile}, nil
}

// Play validates sel against p's hand, p's inventory and the open lines, then
// commits it. On error nothing has changed.
func (g *Game) Play(p *Player, sel Selection) error {
	if !p.HasTile(sel.Tile) {
		return fmt.Errorf("tile %s not in hand: %w", sel.Tile, ErrInvalidPlay)
	}
	if !p.HasCommand(sel.Command) {
		return fmt.Errorf("command %s not in hand: %w", sel.Command, ErrInvalidPlay)
	}
	program := g.Machine.Program
	if !program.IsAvailable(sel.Line) {
		return fmt.Errorf("line %d not available: %w", sel.Line, ErrInvalidPlay)
	}
	if !containsLine(sel.Command.AllowedLines(program.AvailableLines()), sel.Line) {
		return fmt.Errorf("%s may not be placed on line %d: %w", sel.Command, sel.Line, ErrInvalidPlay)
	}

	// Hand and inventory hold the same pointers, commit the originals.
	cmd, _ := p.CommandByID(sel.Command.ID)
	tile, _ := p.TileByID(sel.Tile.ID)
	if err := program.Commit(sel.Line, cmd, tile); err != nil {
		return err
	}
	p.removeCommand(cmd)
	p.removeTile(tile)
	return nil
}

func containsLine(lines []int, line int) bool {
	for _, l := range lines {
		if l == line {
			return true
		}
	}
	return false
}
