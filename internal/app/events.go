package app

import "coding/internal/domain"

// EventKind identifies emitted domain events for adapter dispatch.
type EventKind string

const (
	EventGameStarted        EventKind = "game_started"
	EventRoundStarted       EventKind = "round_started"
	EventHandDealt          EventKind = "hand_dealt"
	EventTilesDrawn         EventKind = "tiles_drawn"
	EventTurnOffered        EventKind = "turn_offered"
	EventCommandPlayed      EventKind = "command_played"
	EventRoundAssembled     EventKind = "round_assembled"
	EventRoundStalled       EventKind = "round_stalled"
	EventProgramRun         EventKind = "program_run"
	EventResourceSent       EventKind = "resource_sent"
	EventFirstPlayerChanged EventKind = "first_player_changed"
	EventRoundEnded         EventKind = "round_ended"
	EventGameEnded          EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.Color // empty means broadcast
}

type SeatInfo struct {
	Color domain.Color
	Name  string
}

type GameStartedPayload struct {
	Players     []SeatInfo
	FirstPlayer domain.Color
	Rounds      int
	Lines       []int
}

type RoundStartedPayload struct {
	Round       int
	FirstPlayer domain.Color
}

type HandDealtPayload struct {
	Color domain.Color
	Hand  []*domain.Command
	Dealt int
	// Bonus is the number of extra instructions granted by RAM.
	Bonus int
}

type TilesDrawnPayload struct {
	Color domain.Color
	Tiles []*domain.Tile
}

// Turn is an open decision point.
type Turn struct {
	Color domain.Color
	Round int
	Menu  domain.Menu
}

type TurnOfferedPayload struct {
	Turn Turn
}

type CommandPlayedPayload struct {
	Color   domain.Color
	Line    int
	Command string
	Var     domain.Variable
	Next    domain.Color // empty once the round is assembled
}

type RoundAssembledPayload struct {
	Round   int
	Listing []string
}

type RoundStalledPayload struct {
	Round     int
	Available []int
}

type ProgramRunPayload struct {
	Round     int
	Trace     []domain.Step
	Variables map[domain.Variable]int
	Registers domain.Registers
}

type ResourceSentPayload struct {
	Line     int
	Transfer domain.Transfer
}

type FirstPlayerChangedPayload struct {
	From domain.Color
	To   domain.Color
}

type Standing struct {
	Color     domain.Color
	Name      string
	Resources map[domain.Resource]int
}

type RoundEndedPayload struct {
	Round     int
	Standings []Standing
}

type GameEndedPayload struct {
	Winners   []domain.Color
	Score     int
	Standings []Standing
}
