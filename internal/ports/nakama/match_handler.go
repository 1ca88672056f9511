package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"coding/internal/app"
	"coding/internal/bot"
	"coding/internal/config"
	"coding/internal/domain"
	"coding/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label

	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
// Seat i plays domain.Colors[i].
type MatchState struct {
	Seats                [4]string                   `json:"seats"`      // User IDs, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"` // Seat index of the match owner
	Tick                 int64                       `json:"tick"`
	Presences            map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`
	Game                 *domain.Game                `json:"-"` // nil while in lobby
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"` // Seconds before a solo human gets bot opponents
	BotTurnDelay         int                         `json:"bot_turn_delay"`      // Seconds a bot waits before committing
	BotWaitUntil         int64                       `json:"bot_wait_until"`
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"`
	Bots                 map[string]*bot.Agent       `json:"-"` // Seats played by agents, including humans who left mid-game
	StandIns             map[string]bool             `json:"-"` // Users whose seat a bot holds until they return
	Scores               ports.ScorePort             `json:"-"`
	rng                  *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.isBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) isBot(userID string) bool {
	_, ok := ms.Bots[userID]
	return ok
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// isHumanSeat reports whether the seat index belongs to a human player.
func (ms *MatchState) isHumanSeat(seat int) bool {
	if seat < 0 || seat >= len(ms.Seats) {
		return false
	}
	return ms.Seats[seat] != "" && !ms.isBot(ms.Seats[seat])
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func (ms *MatchState) findFirstHumanSeat() int {
	for i := range ms.Seats {
		if ms.isHumanSeat(i) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans reports whether only bots and empty seats remain.
func (ms *MatchState) shouldTerminateNoHumans() bool {
	return ms.findFirstHumanSeat() == -1
}

func (ms *MatchState) displayName(userID string) string {
	if p, ok := ms.Presences[userID]; ok && p.GetUsername() != "" {
		return p.GetUsername()
	}
	if agent, ok := ms.Bots[userID]; ok && agent.Name != "" {
		return agent.Name
	}
	return userID
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

func newMatchState(cfg config.GameConfig, cards config.CardSet, scores ports.ScorePort, rng *rand.Rand) *MatchState {
	svc := app.NewService(cfg, cards, rng)
	return &MatchState{
		OwnerSeat:        -1,
		Presences:        make(map[string]runtime.Presence),
		App:              svc,
		BotAutoFillDelay: svc.Config().BotAutoFillDelaySeconds,
		BotTurnDelay:     svc.Config().BotTurnDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
		StandIns:         make(map[string]bool),
		Scores:           scores,
		rng:              rng,
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	cards, err := config.LoadCardSet(cfg.CardsPath)
	if err != nil {
		logger.Warn("MatchInit: Could not load card set %q, using the built-in set: %v", cfg.CardsPath, err)
		cards = config.DefaultCardSet()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := newMatchState(cfg, cards, NewNakamaScoreAdapter(nk), rng)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["coding_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["coding_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotAutoFillDelay = i
		}
	}
	if val, ok := env["coding_bot_turn_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotTurnDelay = i
		}
	}

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Participants of a running game may reconnect; nobody else may join it.
	if matchState.Game != nil {
		if matchState.seatOf(presence.GetUserId()) >= 0 {
			return state, true, ""
		}
		return state, false, "Game in progress"
	}

	if matchState.GetOpenSeatsCount() > 0 {
		return state, true, ""
	}
	for _, seat := range matchState.Seats {
		if matchState.isBot(seat) {
			return state, true, ""
		}
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOf(userID); seat >= 0 {
			if matchState.isBot(userID) {
				logger.Info("MatchJoin: User %s reclaimed seat %d from its stand-in bot", userID, seat)
				delete(matchState.Bots, userID)
				delete(matchState.StandIns, userID)
			}
			mh.sendPrivateState(matchState, dispatcher, logger, userID)
			continue
		}

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}
		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if matchState.isBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !matchState.isHumanSeat(matchState.OwnerSeat) {
		matchState.OwnerSeat = matchState.findFirstHumanSeat()
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		name := matchState.displayName(userID)
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.Game == nil {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
			continue
		}

		// Mid-game the seat keeps its color; a bot plays it until the user returns.
		mh.addStandIn(matchState, logger, userID, name, seat)
	}

	if newOwner := matchState.findFirstHumanSeat(); newOwner != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwner
		logger.Debug("MatchLeave: Owner set to seat %d.", newOwner)
	}

	if matchState.shouldTerminateNoHumans() {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCommand:
			mh.handlePlayCommand(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) addStandIn(state *MatchState, logger runtime.Logger, userID, name string, seat int) {
	identity := bot.GetBotIdentity(seat)
	agent, err := bot.NewAgentFor(identity, domain.Colors[seat], state.rng)
	if err != nil {
		logger.Error("MatchLeave: Failed to create stand-in for %s: %v", userID, err)
		return
	}
	agent.Name = name
	state.Bots[userID] = agent
	state.StandIns[userID] = true
	logger.Info("MatchLeave: Bot plays seat %d for %s until they return.", seat, userID)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill the lobby when a single human has waited long enough.
	if state.BotsEnabled && state.Game == nil {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					agent, err := bot.NewAgentFor(identity, domain.Colors[i], state.rng)
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = identity.UserID
					state.Bots[identity.UserID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", agent.Name, identity.UserID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	if state.Game == nil {
		return
	}
	turn, ok := state.App.PendingTurn(state.Game)
	if !ok {
		state.BotWaitUntil = 0
		return
	}
	userID := state.Seats[turn.Color.Seat()]
	agent, isBot := state.Bots[userID]
	if !isBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		state.BotWaitUntil = state.Tick + int64(state.BotTurnDelay)
		logger.Debug("processBots: Bot %s (%s) will act at tick %d (current %d)", agent.Name, turn.Color, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	sel, err := agent.Decide(ctx, state.Game, turn)
	if err != nil {
		logger.Error("processBots: Bot %s failed to decide: %v", agent.Name, err)
		return
	}
	events, err := state.App.PlayCommand(state.Game, turn.Color, sel)
	if err != nil {
		logger.Error("processBots: Bot %s play %s rejected: %v", agent.Name, sel, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.progressRound(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "game already in progress")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "only the match owner can start the game")
		return
	}

	names := make([]string, len(state.Seats))
	for i, userID := range state.Seats {
		if userID != "" {
			names[i] = state.displayName(userID)
		}
	}

	game, events, err := state.App.StartGame(names)
	if err != nil {
		logger.Warn("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, err.Error())
		return
	}
	state.Game = game
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	events, err = state.App.StartRound(game)
	if err != nil {
		logger.Error("StartGame: Failed to start first round: %v", err)
		return
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.progressRound(ctx, state, dispatcher, logger)

	logger.Info("StartGame: Game started with %d players.", state.GetOccupiedSeatCount())
}

func (mh *matchHandler) handlePlayCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		logger.Warn("handlePlayCommand: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "game not started")
		return
	}
	seat := state.seatOf(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "not seated")
		return
	}

	var request PlayCommandRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlayCommand: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "malformed play request")
		return
	}

	color := domain.Colors[seat]
	events, err := state.App.PlayCommandByID(state.Game, color, request.Line, request.CommandID, request.TileID)
	if err != nil {
		logger.Warn("handlePlayCommand: User %s (%s) play %+v rejected: %v", senderID, color, request, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.progressRound(ctx, state, dispatcher, logger)
}

// progressRound runs assembled programs and moves to the next round or the
// end of the game until a decision is pending again.
func (mh *matchHandler) progressRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for state.Game != nil && state.Game.Phase == domain.PhaseAssembled {
		game := state.Game

		events, err := state.App.RunProgram(game)
		if err != nil {
			logger.Error("progressRound: Round %d program discarded: %v", game.Round, err)
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)

		events, err = state.App.EndRound(game)
		if err != nil {
			logger.Error("progressRound: Failed to end round %d: %v", game.Round, err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)

		if state.App.GameOver(game) {
			events, err = state.App.EndGame(game)
			if err != nil {
				logger.Error("progressRound: Failed to end game: %v", err)
				return
			}
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
			return
		}

		events, err = state.App.StartRound(game)
		if err != nil {
			logger.Error("progressRound: Failed to start round %d: %v", game.Round+1, err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}
}

func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, payload, ok := eventMessage(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	if p, ok := ev.Payload.(app.GameEndedPayload); ok {
		mh.settleScores(ctx, state, logger, p)
		state.Game = nil
		for userID := range state.StandIns {
			if seat := state.seatOf(userID); seat >= 0 {
				state.Seats[seat] = ""
			}
			delete(state.Bots, userID)
			delete(state.StandIns, userID)
		}
		mh.updateLabel(state, dispatcher, logger)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, color := range ev.Recipients {
			seat := color.Seat()
			if seat < 0 {
				continue
			}
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Private events for bots or disconnected users are dropped, never broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) settleScores(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload) {
	if state.Scores == nil {
		return
	}
	winners := make(map[domain.Color]bool, len(p.Winners))
	for _, c := range p.Winners {
		winners[c] = true
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	var updates []ports.ScoreUpdate
	for _, s := range p.Standings {
		userID := state.Seats[s.Color.Seat()]
		// Users who left mid-game still get their result; pool bots do not.
		if userID == "" || (state.isBot(userID) && !state.StandIns[userID]) {
			continue
		}
		updates = append(updates, ports.ScoreUpdate{
			UserID: userID,
			VP:     int64(s.Resources[domain.ResourceVP]),
			Winner: winners[s.Color],
			Metadata: map[string]interface{}{
				"match_id": matchID,
				"color":    string(s.Color),
				"reason":   "game_settlement",
			},
		})
	}
	if len(updates) == 0 {
		return
	}
	if err := state.Scores.RecordScores(ctx, updates); err != nil {
		logger.Error("Failed to record scores: %v", err)
	}
}

// sendPrivateState sends a reconnecting participant their hand, tiles and open turn.
func (mh *matchHandler) sendPrivateState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.Game == nil {
		return
	}
	seat := state.seatOf(userID)
	p, ok := state.Game.Player(domain.Colors[seat])
	if !ok {
		return
	}
	events := []app.Event{
		{Kind: app.EventHandDealt, Payload: app.HandDealtPayload{Color: p.Color, Hand: p.Hand}, Recipients: []domain.Color{p.Color}},
		{Kind: app.EventTilesDrawn, Payload: app.TilesDrawnPayload{Color: p.Color, Tiles: p.Tiles}, Recipients: []domain.Color{p.Color}},
	}
	if turn, ok := state.App.PendingTurn(state.Game); ok && turn.Color == p.Color {
		events = append(events, app.Event{Kind: app.EventTurnOffered, Payload: app.TurnOfferedPayload{Turn: turn}, Recipients: []domain.Color{p.Color}})
	}
	mh.dispatchEvents(context.Background(), state, dispatcher, logger, events)
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	view := matchStateView{
		Tick:      state.Tick,
		OwnerSeat: state.OwnerSeat,
		Phase:     "lobby",
	}
	if state.Game != nil {
		view.Phase = string(state.Game.Phase)
		view.Round = state.Game.Round
		view.FirstPlayer = string(state.Game.FirstPlayer())
		view.Program = state.Game.Machine.Program.Listing()
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		seat := seatView{
			Seat:    i,
			Color:   string(domain.Colors[i]),
			UserID:  userID,
			Name:    state.displayName(userID),
			IsOwner: i == state.OwnerSeat,
			IsBot:   state.isBot(userID),
		}
		if state.Game != nil {
			if p, ok := state.Game.Player(domain.Colors[i]); ok {
				seat.HandSize = len(p.Hand)
				seat.Resources = resourceView(p.Resources)
			}
		}
		view.Seats = append(view.Seats, seat)
	}

	data, err := json.Marshal(view)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true); err != nil {
		logger.Error("broadcastMatchState: Failed to broadcast: %v", err)
	}
}

// sendError sends an OpGameError to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := json.Marshal(errorView{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send game error to %s: %v", userID, err)
	}
}

// matchLabel renders the searchable label used by quick match.
func matchLabel(state *MatchState) (string, error) {
	phase, round := "lobby", 0
	if state.Game != nil {
		phase, round = "playing", state.Game.Round
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":                  labelGame,
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		"phase":                 phase,
		"round":                 round,
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
