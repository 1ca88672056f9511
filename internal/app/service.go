package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"coding/internal/config"
	"coding/internal/domain"
)

// Service contains the card-programming use-cases operating on domain state.
type Service struct {
	cfg   config.GameConfig
	cards config.CardSet
	rng   *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(cfg config.GameConfig, cards config.CardSet, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{cfg: cfg, cards: cards, rng: rng}
}

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("more players than colors")
	ErrNotInSetup     = errors.New("game not between rounds")
	ErrNotAssembling  = errors.New("round not assembling")
	ErrNotAssembled   = errors.New("round program not assembled")
	ErrNotExecuted    = errors.New("round program not executed")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrUnknownPlayer  = errors.New("player not found")
	ErrGameNotOver    = errors.New("rounds remaining")
)

// Config returns the parameters games are created with.
func (s *Service) Config() config.GameConfig {
	return s.cfg
}

// StartGame creates a session. names is indexed by seat (color order); an
// empty name leaves the seat empty.
func (s *Service) StartGame(names []string) (*domain.Game, []Event, error) {
	if len(names) > len(domain.Colors) {
		return nil, nil, ErrTooManyPlayers
	}

	players := make(map[domain.Color]*domain.Player)
	var seated []domain.Color
	for seat, name := range names {
		if name == "" {
			continue
		}
		color := domain.Colors[seat]
		players[color] = domain.NewPlayer(color, name)
		seated = append(seated, color)
	}
	if len(seated) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}

	ids := &domain.IDSource{}
	program := domain.NewProgram(s.cfg.Lines, ids)
	pool, err := s.cards.Build(ids, program.Sequence())
	if err != nil {
		return nil, nil, fmt.Errorf("build instruction pool: %w", err)
	}

	machine := domain.NewMachine(program, players)
	machine.Clear()
	machine.FirstPlayer = seated[s.rng.Intn(len(seated))]

	game := &domain.Game{
		Phase:       domain.PhaseSetup,
		Machine:     machine,
		Commands:    domain.NewPile(pool, s.rng),
		Tiles:       domain.NewPile(domain.NewTilePool(ids, s.cfg.TileCopies), s.rng),
		IDs:         ids,
		CurrentSeat: -1,
	}

	info := make([]SeatInfo, 0, len(seated))
	for _, p := range game.Seated() {
		info = append(info, SeatInfo{Color: p.Color, Name: p.Name})
	}
	return game, []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Players:     info,
			FirstPlayer: machine.FirstPlayer,
			Rounds:      s.cfg.Rounds,
			Lines:       program.Sequence(),
		},
	}}, nil
}

// StartRound tops up every hand, rebuilds the program store and offers the
// first decision to the first player.
func (s *Service) StartRound(game *domain.Game) ([]Event, error) {
	if game.Phase != domain.PhaseSetup {
		return nil, ErrNotInSetup
	}
	if s.GameOver(game) {
		return nil, ErrNotInSetup
	}

	game.Round++
	game.Machine.Program = domain.NewProgram(s.cfg.Lines, game.IDs)

	events := []Event{{
		Kind:    EventRoundStarted,
		Payload: RoundStartedPayload{Round: game.Round, FirstPlayer: game.FirstPlayer()},
	}}

	seated := game.Seated()
	base := s.cfg.Lines/len(seated) + s.cfg.CommandHandExtra
	for _, p := range seated {
		bonus := p.Resources[domain.ResourceRAM]
		dealt := 0
		for len(p.Hand) < base+bonus {
			cmd, err := game.Commands.Draw()
			if err != nil {
				break
			}
			p.Hand = append(p.Hand, cmd)
			dealt++
		}
		p.Resources[domain.ResourceRAM] = 0

		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Color: p.Color,
				Hand:  append([]*domain.Command(nil), p.Hand...),
				Dealt: dealt,
				Bonus: bonus,
			},
			Recipients: []domain.Color{p.Color},
		})
	}

	game.Phase = domain.PhaseAssembling
	game.CurrentSeat = game.FirstPlayer().Seat()
	return s.advance(game, events), nil
}

// PendingTurn returns the open decision point, if any.
func (s *Service) PendingTurn(game *domain.Game) (Turn, bool) {
	if game.Phase != domain.PhaseAssembling {
		return Turn{}, false
	}
	p, ok := game.CurrentPlayer()
	if !ok {
		return Turn{}, false
	}
	return Turn{Color: p.Color, Round: game.Round, Menu: game.Menu(p)}, true
}

// PlayCommand applies the current participant's selection and moves the
// rotation on. An ErrInvalidPlay leaves the same decision point open.
func (s *Service) PlayCommand(game *domain.Game, color domain.Color, sel domain.Selection) ([]Event, error) {
	p, err := turnHolder(game, color)
	if err != nil {
		return nil, err
	}
	if err := game.Play(p, sel); err != nil {
		return nil, err
	}

	game.CurrentSeat = domain.NextSeat(game.CurrentSeat)
	events := s.advance(game, nil)

	played := CommandPlayedPayload{
		Color:   color,
		Line:    sel.Line,
		Command: sel.Command.String(),
		Var:     sel.Tile.Var,
	}
	if next, ok := game.CurrentPlayer(); ok && game.Phase == domain.PhaseAssembling {
		played.Next = next.Color
	}
	return append([]Event{{Kind: EventCommandPlayed, Payload: played}}, events...), nil
}

// PlayCommandByID resolves a handle-based selection and plays it.
func (s *Service) PlayCommandByID(game *domain.Game, color domain.Color, line, commandID, tileID int) ([]Event, error) {
	p, err := turnHolder(game, color)
	if err != nil {
		return nil, err
	}
	sel, err := p.Select(line, commandID, tileID)
	if err != nil {
		return nil, err
	}
	return s.PlayCommand(game, color, sel)
}

func turnHolder(game *domain.Game, color domain.Color) (*domain.Player, error) {
	if game.Phase != domain.PhaseAssembling {
		return nil, ErrNotAssembling
	}
	p, ok := game.Player(color)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if current, ok := game.CurrentPlayer(); !ok || current.Color != color {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// advance finds the next participant able to act, starting at CurrentSeat,
// or closes assembly when no line is left or nobody can act. A participant
// can act when some instruction in hand has a legal line and a tile to bind;
// everyone else is skipped, even with a non-empty hand.
func (s *Service) advance(game *domain.Game, events []Event) []Event {
	program := game.Machine.Program
	if len(program.AvailableLines()) == 0 {
		return s.closeAssembly(game, events)
	}
	if domain.CountPlayersWithHands(game) == 0 {
		return s.stall(game, events)
	}

	for range domain.Colors {
		p, ok := game.CurrentPlayer()
		if ok && len(p.Hand) > 0 {
			if len(p.Tiles) == 0 {
				events = s.refillTiles(game, p, events)
			}
			if turn, _ := s.PendingTurn(game); turn.Menu.Playable() {
				return append(events, Event{
					Kind:       EventTurnOffered,
					Payload:    TurnOfferedPayload{Turn: turn},
					Recipients: []domain.Color{p.Color},
				})
			}
		}
		game.CurrentSeat = domain.NextSeat(game.CurrentSeat)
	}
	return s.stall(game, events)
}

func (s *Service) stall(game *domain.Game, events []Event) []Event {
	program := game.Machine.Program
	events = append(events, Event{
		Kind:    EventRoundStalled,
		Payload: RoundStalledPayload{Round: game.Round, Available: program.AvailableLines()},
	})
	return s.closeAssembly(game, events)
}

func (s *Service) closeAssembly(game *domain.Game, events []Event) []Event {
	game.Phase = domain.PhaseAssembled
	game.CurrentSeat = -1
	return append(events, Event{
		Kind:    EventRoundAssembled,
		Payload: RoundAssembledPayload{Round: game.Round, Listing: game.Machine.Program.Listing()},
	})
}

func (s *Service) refillTiles(game *domain.Game, p *domain.Player, events []Event) []Event {
	for len(p.Tiles) < s.cfg.TileHandSize {
		tile, err := game.Tiles.Draw()
		if err != nil {
			break
		}
		p.Tiles = append(p.Tiles, tile)
	}
	return append(events, Event{
		Kind:       EventTilesDrawn,
		Payload:    TilesDrawnPayload{Color: p.Color, Tiles: append([]*domain.Tile(nil), p.Tiles...)},
		Recipients: []domain.Color{p.Color},
	})
}

// RunProgram executes the assembled program. On ErrExecutionFault the run is
// discarded and the game state is left as assembled.
func (s *Service) RunProgram(game *domain.Game) ([]Event, error) {
	if game.Phase != domain.PhaseAssembled {
		return nil, ErrNotAssembled
	}
	m := game.Machine
	previous := m.FirstPlayer

	trace, err := m.TryRun()
	if err != nil {
		return nil, fmt.Errorf("round %d: %w", game.Round, err)
	}
	game.Phase = domain.PhaseExecuted

	vars := make(map[domain.Variable]int, len(domain.Variables))
	for _, v := range domain.Variables {
		vars[v] = m.Var(v)
	}
	events := []Event{{
		Kind:    EventProgramRun,
		Payload: ProgramRunPayload{Round: game.Round, Trace: trace, Variables: vars, Registers: m.Regs},
	}}

	for _, step := range trace {
		if step.Transfer != nil && step.Transfer.Delivered {
			events = append(events, Event{
				Kind:    EventResourceSent,
				Payload: ResourceSentPayload{Line: step.Line, Transfer: *step.Transfer},
			})
		}
	}

	for _, step := range trace {
		if step.NewFirstPlayer == "" {
			continue
		}
		events = append(events, Event{
			Kind:    EventFirstPlayerChanged,
			Payload: FirstPlayerChangedPayload{From: previous, To: step.NewFirstPlayer},
		})
		previous = step.NewFirstPlayer
	}
	return events, nil
}

// EndRound discards the round's played cards and returns the game to setup.
func (s *Service) EndRound(game *domain.Game) ([]Event, error) {
	if game.Phase != domain.PhaseExecuted && game.Phase != domain.PhaseAssembled {
		return nil, ErrNotExecuted
	}
	commands, tiles := game.Machine.Program.Played()
	game.Commands.Discard(commands...)
	game.Tiles.Discard(tiles...)

	game.Phase = domain.PhaseSetup
	return []Event{{
		Kind:    EventRoundEnded,
		Payload: RoundEndedPayload{Round: game.Round, Standings: standings(game)},
	}}, nil
}

// GameOver reports whether every round has been played.
func (s *Service) GameOver(game *domain.Game) bool {
	return game.Round >= s.cfg.Rounds
}

// EndGame concludes the session and reports the participants with the most VP.
func (s *Service) EndGame(game *domain.Game) ([]Event, error) {
	if game.Phase != domain.PhaseSetup || !s.GameOver(game) {
		return nil, ErrGameNotOver
	}
	game.Phase = domain.PhaseEnded

	leaders, best := domain.Leaders(game.Seated(), domain.ResourceVP)
	winners := make([]domain.Color, 0, len(leaders))
	for _, p := range leaders {
		winners = append(winners, p.Color)
	}
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{Winners: winners, Score: best, Standings: standings(game)},
	}}, nil
}

func standings(game *domain.Game) []Standing {
	seated := game.Seated()
	out := make([]Standing, 0, len(seated))
	for _, p := range seated {
		resources := make(map[domain.Resource]int, len(p.Resources))
		for r, v := range p.Resources {
			resources[r] = v
		}
		out = append(out, Standing{Color: p.Color, Name: p.Name, Resources: resources})
	}
	return out
}
