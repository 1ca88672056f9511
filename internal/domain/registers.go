package domain

// RegisterCount is the number of binary register flags.
const RegisterCount = 4

// Registers holds the binary flags R[0..3]. (R0,R1) select a resource and
// (R2,R3) select a color, each read as a 2-bit number.
type Registers [RegisterCount]int

// Resource is a kind of participant resource.
type Resource string

const (
	// ResourceNone makes a transfer have no resource effect.
	ResourceNone Resource = "N/A"
	// ResourceCPU decides who becomes first player.
	ResourceCPU Resource = "CPU"
	// ResourceRAM grants extra instructions at the next deal.
	ResourceRAM Resource = "RAM"
	// ResourceVP is the score resource.
	ResourceVP Resource = "VP"
)

// Resources is the resource lookup table in selector order.
var Resources = [...]Resource{ResourceNone, ResourceCPU, ResourceRAM, ResourceVP}

// Color identifies a participant and the seat it occupies.
type Color string

const (
	ColorWhite Color = "WHITE"
	ColorBlack Color = "BLACK"
	ColorRed   Color = "RED"
	ColorBlue  Color = "BLUE"
)

// Colors is the color lookup table in selector order, which is also seat order.
var Colors = [...]Color{ColorWhite, ColorBlack, ColorRed, ColorBlue}

// Seat returns the 0-based seat of c, or -1 for an unknown color.
func (c Color) Seat() int {
	for i, known := range Colors {
		if known == c {
			return i
		}
	}
	return -1
}

// Resource decodes the resource selected by R0 and R1.
func (r Registers) Resource() Resource {
	return Resources[r[0]*2+r[1]]
}

// Color decodes the color selected by R2 and R3.
func (r Registers) Color() Color {
	return Colors[r[2]*2+r[3]]
}

// Toggle flips the register at index i, taken modulo RegisterCount.
func (r *Registers) Toggle(i int) (index, from, to int) {
	index = mod(i, RegisterCount)
	from = r[index]
	r[index] = mod(1-from, 2)
	return index, from, r[index]
}
