package domain

// Variable names one of the fixed program variables.
type Variable string

const (
	VarA Variable = "A%"
	VarB Variable = "B%"
	VarC Variable = "C%"
	VarD Variable = "D%"
)

// Variables lists the program variables in slot order.
var Variables = [...]Variable{VarA, VarB, VarC, VarD}

// Modulus bounds every variable value to 0..Modulus-1.
const Modulus = 4

// Index returns the slot of v, or -1 when v is not a program variable.
func (v Variable) Index() int {
	for i, known := range Variables {
		if known == v {
			return i
		}
	}
	return -1
}

// Valid reports whether v names a program variable.
func (v Variable) Valid() bool {
	return v.Index() >= 0
}

// Tile is a variable reference card. Tiles are immutable once drawn.
type Tile struct {
	ID  int
	Var Variable
}

func (t *Tile) String() string {
	if t == nil {
		return ""
	}
	return string(t.Var)
}

// NewTilePool creates copies tiles for each variable.
func NewTilePool(ids *IDSource, copies int) []*Tile {
	tiles := make([]*Tile, 0, len(Variables)*copies)
	for _, v := range Variables {
		for i := 0; i < copies; i++ {
			tiles = append(tiles, &Tile{ID: ids.Next(), Var: v})
		}
	}
	return tiles
}

// mod returns the non-negative remainder of n / m.
func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}
