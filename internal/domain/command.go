package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the behavior of an instruction card. The set is closed.
type Kind string

const (
	KindNoop      Kind = "NOOP"
	KindEnd       Kind = "END"
	KindGoto      Kind = "GOTO"
	KindClear     Kind = "CLEAR"
	KindCopy      Kind = "COPY"
	KindIncr      Kind = "INCR"
	KindDecr      Kind = "DECR"
	KindAdd       Kind = "ADD"
	KindSub       Kind = "SUB"
	KindLet       Kind = "LET"
	KindToggle    Kind = "TOGL"
	KindToggleVar Kind = "TOGLV"
	KindSend      Kind = "SEND"
	KindDelete    Kind = "DELETE"
)

// Kinds lists every instruction kind.
var Kinds = [...]Kind{
	KindNoop, KindEnd, KindGoto, KindClear, KindCopy, KindIncr, KindDecr,
	KindAdd, KindSub, KindLet, KindToggle, KindToggleVar, KindSend, KindDelete,
}

// ParseKind resolves a card-file kind name. Matching ignores case.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Command is one instruction card. Two commands match only when their ids do.
type Command struct {
	ID    int
	Kind  Kind
	Value string

	arg int      // line number, literal or register index
	src Variable // source variable of COPY/ADD/SUB
}

// NewCommand builds an instruction of the given kind, parsing value as the
// kind requires: a line number (GOTO, DELETE), an integer (LET), a register
// index (TOGL) or a variable name (COPY, ADD, SUB). Other kinds ignore value.
func NewCommand(id int, kind Kind, value string) (*Command, error) {
	value = strings.TrimSpace(value)
	c := &Command{ID: id, Kind: kind}

	switch kind {
	case KindNoop, KindEnd, KindClear, KindIncr, KindDecr, KindToggleVar, KindSend:
		return c, nil
	case KindGoto, KindDelete, KindLet, KindToggle:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s value %q is not a number: %w", kind, value, ErrInvalidCommand)
		}
		if (kind == KindGoto || kind == KindDelete) && n <= 0 {
			return nil, fmt.Errorf("%s target %d is not a line: %w", kind, n, ErrInvalidCommand)
		}
		if kind == KindToggle && (n < 0 || n >= RegisterCount) {
			return nil, fmt.Errorf("%s register %d out of range: %w", kind, n, ErrInvalidCommand)
		}
		c.arg = n
	case KindCopy, KindAdd, KindSub:
		v := Variable(strings.ToUpper(value))
		if !v.Valid() {
			return nil, fmt.Errorf("%s source %q is not a variable: %w", kind, value, ErrInvalidCommand)
		}
		c.src = v
	default:
		return nil, fmt.Errorf("unknown kind %q: %w", kind, ErrInvalidCommand)
	}

	c.Value = value
	return c, nil
}

// Noop returns a fresh NOOP instruction.
func Noop(ids *IDSource) *Command {
	return &Command{ID: ids.Next(), Kind: KindNoop}
}

// Target returns the line number carried by GOTO and DELETE.
func (c *Command) Target() (int, bool) {
	if c.Kind == KindGoto || c.Kind == KindDelete {
		return c.arg, true
	}
	return 0, false
}

// SelfDestructs reports whether the instruction turns into a NOOP after firing.
func (c *Command) SelfDestructs() bool {
	return c.Kind == KindGoto || c.Kind == KindDelete
}

// AllowedLines filters the available lines down to the ones this command may
// be placed on. Only DELETE restricts placement: it may not sit on its own target.
func (c *Command) AllowedLines(available []int) []int {
	out := make([]int, 0, len(available))
	for _, line := range available {
		if c.Kind == KindDelete && line == c.arg {
			continue
		}
		out = append(out, line)
	}
	return out
}

// AllowedTiles returns the tiles this command may be bound to. No kind restricts this.
func (c *Command) AllowedTiles(tiles []*Tile) []*Tile {
	return append([]*Tile(nil), tiles...)
}

func (c *Command) String() string {
	switch c.Kind {
	case KindLet:
		return fmt.Sprintf("LET = %d", c.arg)
	case KindToggle:
		return fmt.Sprintf("TOGL R[%d]", c.arg)
	case KindToggleVar:
		return "TOGL R[ ]"
	case KindGoto, KindDelete:
		return fmt.Sprintf("%s %d", c.Kind, c.arg)
	case KindCopy, KindAdd, KindSub:
		return fmt.Sprintf("%s %s", c.Kind, c.src)
	default:
		return string(c.Kind)
	}
}
