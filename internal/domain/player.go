package domain

import "fmt"

// Player holds the domain state for a participant.
type Player struct {
	Color     Color
	Name      string
	Hand      []*Command
	Tiles     []*Tile
	Resources map[Resource]int
}

// NewPlayer creates a participant with every resource set to zero.
func NewPlayer(color Color, name string) *Player {
	if name == "" {
		name = string(color)
	}
	resources := make(map[Resource]int, len(Resources))
	for _, r := range Resources {
		resources[r] = 0
	}
	return &Player{Color: color, Name: name, Resources: resources}
}

func (p *Player) String() string {
	if p.Name == "" || p.Name == string(p.Color) {
		return string(p.Color)
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Color)
}

// HasCommand reports whether the hand holds cmd (by id).
func (p *Player) HasCommand(cmd *Command) bool {
	return cmd != nil && p.commandIndex(cmd.ID) >= 0
}

// HasTile reports whether the inventory holds tile (by id).
func (p *Player) HasTile(tile *Tile) bool {
	return tile != nil && p.tileIndex(tile.ID) >= 0
}

// CommandByID looks up a hand instruction by id.
func (p *Player) CommandByID(id int) (*Command, bool) {
	if i := p.commandIndex(id); i >= 0 {
		return p.Hand[i], true
	}
	return nil, false
}

// TileByID looks up an inventory tile by id.
func (p *Player) TileByID(id int) (*Tile, bool) {
	if i := p.tileIndex(id); i >= 0 {
		return p.Tiles[i], true
	}
	return nil, false
}

func (p *Player) commandIndex(id int) int {
	for i, c := range p.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) tileIndex(id int) int {
	for i, t := range p.Tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) removeCommand(cmd *Command) {
	if i := p.commandIndex(cmd.ID); i >= 0 {
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	}
}

func (p *Player) removeTile(tile *Tile) {
	if i := p.tileIndex(tile.ID); i >= 0 {
		p.Tiles = append(p.Tiles[:i], p.Tiles[i+1:]...)
	}
}

// Clone returns a copy that shares no mutable state with p.
func (p *Player) Clone() *Player {
	c := &Player{
		Color:     p.Color,
		Name:      p.Name,
		Hand:      append([]*Command(nil), p.Hand...),
		Tiles:     append([]*Tile(nil), p.Tiles...),
		Resources: make(map[Resource]int, len(p.Resources)),
	}
	for r, v := range p.Resources {
		c.Resources[r] = v
	}
	return c
}
