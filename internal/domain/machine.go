package domain

import "fmt"

// Transfer describes the outcome of one SEND.
type Transfer struct {
	Color     Color
	Resource  Resource
	Amount    int
	Delivered bool // false when nobody holds Color or Resource is N/A
}

// Step records one executed program line.
type Step struct {
	Line           int
	Command        string
	Target         Variable
	Effect         string
	Transfer       *Transfer
	NewFirstPlayer Color
}

// Machine executes a Program against the shared variables, registers and
// participant resources. It is not safe for concurrent use.
type Machine struct {
	Vars        [len(Variables)]int
	Regs        Registers
	Program     *Program
	Players     map[Color]*Player
	FirstPlayer Color

	jump    int
	jumping bool
}

// NewMachine returns a machine with cleared variables and registers.
func NewMachine(program *Program, players map[Color]*Player) *Machine {
	if players == nil {
		players = make(map[Color]*Player)
	}
	return &Machine{Program: program, Players: players}
}

// Var returns the current value of v. Unknown variables read as zero.
func (m *Machine) Var(v Variable) int {
	if i := v.Index(); i >= 0 {
		return m.Vars[i]
	}
	return 0
}

// Clear resets all variables and registers to zero.
func (m *Machine) Clear() {
	m.Vars = [len(Variables)]int{}
	m.Regs = Registers{}
}

// Run executes the program once, starting at the first sequence line whether
// or not anything is committed there. It stops cleanly at END. A run that
// finds no next line returns ErrExecutionFault together with the partial trace.
//
// GOTO and DELETE are consumed the first time they fire, so the run visits at
// most (committed lines) * (1 + GOTOs committed) lines.
func (m *Machine) Run() ([]Step, error) {
	var trace []Step
	m.jumping = false
	current := m.Program.First()

	for {
		if line, ok := m.Program.Line(current); ok {
			step, halt := m.apply(line)
			trace = append(trace, step)
			if halt {
				return trace, nil
			}
		}

		if m.jumping {
			current, m.jumping = m.jump, false
			continue
		}

		next, ok := m.Program.Next(current)
		if !ok {
			return trace, fmt.Errorf("after line %d: %w", current, ErrExecutionFault)
		}
		current = next
	}
}

// TryRun executes the program on a copy of m and keeps the outcome only when
// the run halts cleanly. After a fault m, including its id source, is exactly
// as it was before the call.
func (m *Machine) TryRun() ([]Step, error) {
	c := m.Clone()
	trace, err := c.Run()
	if err != nil {
		return trace, err
	}

	*m.Program.ids = *c.Program.ids
	c.Program.ids = m.Program.ids
	m.Vars, m.Regs, m.FirstPlayer, m.Program = c.Vars, c.Regs, c.FirstPlayer, c.Program
	for color, p := range c.Players {
		m.Players[color].Resources = p.Resources
	}
	return trace, nil
}

// apply performs the effect of one line and reports whether the run halts.
func (m *Machine) apply(line *ProgramLine) (Step, bool) {
	cmd := line.Command
	target := line.Target()
	step := Step{Line: line.Number, Command: cmd.String(), Target: target}

	switch cmd.Kind {
	case KindNoop:
	case KindEnd:
		step.Effect = "END"
		return step, true
	case KindGoto:
		m.jump, m.jumping = cmd.arg, true
		step.Effect = fmt.Sprintf("continuing execution from line %d", cmd.arg)
	case KindClear:
		m.Clear()
		step.Effect = "variables and registers cleared"
	case KindCopy:
		step.Effect = m.set(target, m.Var(cmd.src))
	case KindIncr:
		step.Effect = m.set(target, m.Var(target)+1)
	case KindDecr:
		step.Effect = m.set(target, m.Var(target)-1)
	case KindAdd:
		step.Effect = m.set(target, m.Var(target)+m.Var(cmd.src))
	case KindSub:
		step.Effect = m.set(target, m.Var(target)-m.Var(cmd.src))
	case KindLet:
		step.Effect = m.set(target, cmd.arg)
	case KindToggle:
		step.Effect = m.toggle(cmd.arg)
	case KindToggleVar:
		step.Effect = m.toggle(m.Var(target))
	case KindSend:
		m.send(target, &step)
	case KindDelete:
		if old, ok := m.Program.OverwriteWithNoop(cmd.arg); ok {
			step.Effect = fmt.Sprintf("deleted %s on line %d", old, cmd.arg)
		} else {
			step.Effect = fmt.Sprintf("nothing to delete on line %d", cmd.arg)
		}
	}
	if cmd.SelfDestructs() {
		m.Program.OverwriteWithNoop(line.Number)
	}
	return step, false
}

func (m *Machine) set(v Variable, value int) string {
	i := v.Index()
	if i < 0 {
		return ""
	}
	old := m.Vars[i]
	m.Vars[i] = mod(value, Modulus)
	if old == m.Vars[i] {
		return ""
	}
	return fmt.Sprintf("%s changed from %d to %d", v, old, m.Vars[i])
}

func (m *Machine) toggle(i int) string {
	index, from, to := m.Regs.Toggle(i)
	return fmt.Sprintf("R[%d] flipped from %d to %d", index, from, to)
}

func (m *Machine) send(v Variable, step *Step) {
	t := &Transfer{
		Color:    m.Regs.Color(),
		Resource: m.Regs.Resource(),
		Amount:   m.Var(v),
	}
	step.Transfer = t
	step.Effect = fmt.Sprintf("%s.%s += %d", t.Color, t.Resource, t.Amount)

	recipient, ok := m.Players[t.Color]
	if !ok {
		return
	}
	if t.Resource != ResourceNone {
		recipient.Resources[t.Resource] += t.Amount
		t.Delivered = true
	}
	if t.Resource == ResourceCPU && m.takesLead(recipient) {
		m.FirstPlayer = recipient.Color
		step.NewFirstPlayer = recipient.Color
	}
}

// takesLead reports whether p now holds strictly more CPU than the first player.
func (m *Machine) takesLead(p *Player) bool {
	if m.FirstPlayer == p.Color {
		return false
	}
	incumbent, ok := m.Players[m.FirstPlayer]
	if !ok {
		return true
	}
	return p.Resources[ResourceCPU] > incumbent.Resources[ResourceCPU]
}

// Clone returns a machine that can run without affecting m.
func (m *Machine) Clone() *Machine {
	players := make(map[Color]*Player, len(m.Players))
	for c, p := range m.Players {
		players[c] = p.Clone()
	}
	return &Machine{
		Vars:        m.Vars,
		Regs:        m.Regs,
		Program:     m.Program.Clone(),
		Players:     players,
		FirstPlayer: m.FirstPlayer,
	}
}
