package nakama

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"coding/internal/app"
	"coding/internal/bot"
	"coding/internal/config"
	"coding/internal/domain"
	"coding/internal/ports"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: data, presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return md.BroadcastMessage(opCode, data, presences, sender, reliable)
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOp(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

type mockScores struct {
	recorded []ports.ScoreUpdate
}

func (m *mockScores) OpenLedger(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

func (m *mockScores) RecordScores(ctx context.Context, updates []ports.ScoreUpdate) error {
	m.recorded = append(m.recorded, updates...)
	return nil
}

type mockPresence struct {
	userID   string
	username string
}

func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.username }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

func newTestState(t *testing.T, seed int64) (*MatchState, *mockScores) {
	t.Helper()
	scores := &mockScores{}
	state := newMatchState(config.Default(), config.DefaultCardSet(), scores, rand.New(rand.NewSource(seed)))
	return state, scores
}

func seatHuman(state *MatchState, seat int, userID string) {
	state.Seats[seat] = userID
	state.Presences[userID] = mockPresence{userID: userID, username: userID}
}

func seatBot(t *testing.T, state *MatchState, seat int) string {
	t.Helper()
	identity := bot.GetBotIdentity(seat)
	agent, err := bot.NewAgentFor(identity, domain.Colors[seat], state.rng)
	if err != nil {
		t.Fatalf("NewAgentFor: %v", err)
	}
	state.Seats[seat] = identity.UserID
	state.Bots[identity.UserID] = agent
	return identity.UserID
}

func TestFindFirstHumanSeat(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *MatchState)
		want  int
	}{
		{
			name: "FirstHumanAfterBot",
			setup: func(t *testing.T, s *MatchState) {
				seatBot(t, s, 0)
				seatHuman(s, 1, "user-1")
			},
			want: 1,
		},
		{
			name: "AllBots",
			setup: func(t *testing.T, s *MatchState) {
				seatBot(t, s, 0)
				seatBot(t, s, 1)
			},
			want: -1,
		},
		{
			name:  "AllEmpty",
			setup: func(t *testing.T, s *MatchState) {},
			want:  -1,
		},
		{
			name: "FirstHumanIsSeatZero",
			setup: func(t *testing.T, s *MatchState) {
				seatHuman(s, 0, "user-1")
				seatBot(t, s, 1)
				seatHuman(s, 2, "user-2")
			},
			want: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state, _ := newTestState(t, 1)
			test.setup(t, state)
			if got := state.findFirstHumanSeat(); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
			if got, want := state.shouldTerminateNoHumans(), test.want == -1; got != want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, want)
			}
		})
	}
}

func TestMatchLabel(t *testing.T) {
	state, _ := newTestState(t, 1)
	seatHuman(state, 0, "user-1")

	label, err := matchLabel(state)
	if err != nil {
		t.Fatalf("matchLabel: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(label), &got); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if got["game"] != labelGame || got["phase"] != "lobby" || got["open"] != float64(3) || got["round"] != float64(0) {
		t.Fatalf("unexpected lobby label %s", label)
	}

	seatBot(t, state, 1)
	game, _, err := state.App.StartGame([]string{"user-1", "bot", "", ""})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	state.Game = game
	label, _ = matchLabel(state)
	got = nil
	_ = json.Unmarshal([]byte(label), &got)
	if got["phase"] != "playing" || got["open"] != float64(2) {
		t.Fatalf("unexpected playing label %s", label)
	}
}

func TestNewMatchStateTakesBotDelaysFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BotAutoFillDelaySeconds, cfg.BotTurnDelaySeconds = 7, 3
	state := newMatchState(cfg, config.DefaultCardSet(), &mockScores{}, rand.New(rand.NewSource(1)))
	if state.BotAutoFillDelay != 7 || state.BotTurnDelay != 3 {
		t.Fatalf("delays = %d/%d, want 7/3", state.BotAutoFillDelay, state.BotTurnDelay)
	}
	if state.App.Config() != cfg {
		t.Fatalf("service config = %+v, want %+v", state.App.Config(), cfg)
	}
}

func TestProcessBots_FillsSeatsForSoloHuman(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, _ := newTestState(t, 1)
	state.BotsEnabled = true
	state.BotAutoFillDelay = 2
	state.LastSinglePlayerTick = 8
	state.Tick = 10
	seatHuman(state, 0, "user-1")

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("expected every seat filled, %d open", state.GetOpenSeatsCount())
	}
	if len(state.Bots) != 3 {
		t.Fatalf("expected 3 bots, got %d", len(state.Bots))
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if len(dispatcher.byOp(OpMatchState)) == 0 || dispatcher.labelUpdates == 0 {
		t.Fatalf("expected match state broadcast and label update after auto-fill")
	}
}

func TestProcessBots_WaitsForDelay(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, _ := newTestState(t, 1)
	state.BotsEnabled = true
	state.BotAutoFillDelay = 10
	state.Tick = 5
	seatHuman(state, 0, "user-1")

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.GetOpenSeatsCount() != 3 {
		t.Fatalf("bots added before the delay elapsed")
	}
	if state.LastSinglePlayerTick != 5 {
		t.Fatalf("expected timer started at tick 5, got %d", state.LastSinglePlayerTick)
	}
}

func TestHandleStartGame_RequiresOwner(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, _ := newTestState(t, 1)
	seatHuman(state, 0, "user-1")
	seatHuman(state, 1, "user-2")
	state.OwnerSeat = 0

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: "user-2"}, opCode: OpStartGame})

	if state.Game != nil {
		t.Fatalf("non-owner started the game")
	}
	errs := dispatcher.byOp(OpGameError)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	var view errorView
	if err := json.Unmarshal(errs[0].data, &view); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if view.Code != ErrCodeForbidden {
		t.Fatalf("error code = %d, want %d", view.Code, ErrCodeForbidden)
	}
	if len(errs[0].presences) != 1 || errs[0].presences[0].GetUserId() != "user-2" {
		t.Fatalf("error not sent privately to the sender")
	}
}

func TestHandleStartGame_TooFewPlayers(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, _ := newTestState(t, 1)
	seatHuman(state, 0, "user-1")
	state.OwnerSeat = 0

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame})

	if state.Game != nil {
		t.Fatalf("game started with one player")
	}
	if len(dispatcher.byOp(OpGameError)) != 1 {
		t.Fatalf("expected an error for a lone player")
	}
}

func TestHandleStartGame_DealsPrivately(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, _ := newTestState(t, 3)
	state.BotTurnDelay = 0
	seatHuman(state, 0, "user-1")
	seatBot(t, state, 1)
	state.OwnerSeat = 0

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame})

	if state.Game == nil {
		t.Fatalf("game not started")
	}
	if state.Game.Round != 1 || state.Game.Phase != domain.PhaseAssembling {
		t.Fatalf("unexpected round %d phase %s", state.Game.Round, state.Game.Phase)
	}
	if len(dispatcher.byOp(OpGameStarted)) != 1 || len(dispatcher.byOp(OpRoundStarted)) != 1 {
		t.Fatalf("expected game and round start broadcasts")
	}
	hands := dispatcher.byOp(OpHandDealt)
	if len(hands) != 1 {
		t.Fatalf("expected only the human's hand to be sent, got %d", len(hands))
	}
	if len(hands[0].presences) != 1 || hands[0].presences[0].GetUserId() != "user-1" {
		t.Fatalf("hand was not sent privately")
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatalf("label not updated on start")
	}
}

func TestHandlePlayCommand(t *testing.T) {
	handler := newMatchHandler()
	state, _ := newTestState(t, 5)
	seatHuman(state, 0, "user-1")
	seatHuman(state, 1, "user-2")

	game, _, err := state.App.StartGame([]string{"user-1", "user-2", "", ""})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	state.Game = game
	if _, err := state.App.StartRound(game); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	turn, ok := state.App.PendingTurn(game)
	if !ok {
		t.Fatalf("no pending turn")
	}
	current := state.Seats[turn.Color.Seat()]
	waiting := "user-1"
	if current == waiting {
		waiting = "user-2"
	}

	t.Run("Malformed", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		handler.handlePlayCommand(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: current}, opCode: OpPlayCommand, data: []byte("{")})
		errs := dispatcher.byOp(OpGameError)
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %d", len(errs))
		}
		var view errorView
		_ = json.Unmarshal(errs[0].data, &view)
		if view.Code != ErrCodeBadRequest {
			t.Fatalf("code = %d, want %d", view.Code, ErrCodeBadRequest)
		}
	})

	t.Run("NotYourTurn", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		data, _ := json.Marshal(PlayCommandRequest{Line: 10})
		handler.handlePlayCommand(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: waiting}, opCode: OpPlayCommand, data: data})
		errs := dispatcher.byOp(OpGameError)
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %d", len(errs))
		}
		var view errorView
		_ = json.Unmarshal(errs[0].data, &view)
		if view.Code != ErrCodeForbidden {
			t.Fatalf("code = %d, want %d", view.Code, ErrCodeForbidden)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		dispatcher := &mockDispatcher{}
		var req PlayCommandRequest
		for _, opt := range turn.Menu {
			if len(opt.Lines) > 0 && len(opt.Tiles) > 0 {
				req = PlayCommandRequest{Line: opt.Lines[0], CommandID: opt.Command.ID, TileID: opt.Tiles[0].ID}
				break
			}
		}
		data, _ := json.Marshal(req)
		handler.handlePlayCommand(context.Background(), state, dispatcher, noopLogger{}, mockMatchData{mockPresence: mockPresence{userID: current}, opCode: OpPlayCommand, data: data})

		if len(dispatcher.byOp(OpGameError)) != 0 {
			t.Fatalf("valid play rejected")
		}
		played := dispatcher.byOp(OpCommandPlayed)
		if len(played) != 1 || played[0].presences != nil {
			t.Fatalf("expected one public command_played broadcast")
		}
		if _, ok := game.Machine.Program.Line(req.Line); !ok {
			t.Fatalf("line %d not committed", req.Line)
		}
	})
}

func TestBotsPlayGameToSettlement(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state, scores := newTestState(t, 11)
	state.BotTurnDelay = 0

	seatHuman(state, 0, "user-1")
	for seat := 1; seat < len(state.Seats); seat++ {
		seatBot(t, state, seat)
	}
	game, events, err := state.App.StartGame([]string{"user-1", "b1", "b2", "b3"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	state.Game = game
	handler.dispatchEvents(context.Background(), state, dispatcher, noopLogger{}, events)

	// The human leaves; a stand-in finishes the game for them.
	delete(state.Presences, "user-1")
	handler.addStandIn(state, noopLogger{}, "user-1", "user-1", 0)

	events, err = state.App.StartRound(game)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	handler.dispatchEvents(context.Background(), state, dispatcher, noopLogger{}, events)
	handler.progressRound(context.Background(), state, dispatcher, noopLogger{})

	for i := 0; state.Game != nil && i < 1000; i++ {
		state.Tick++
		handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	}

	if state.Game != nil {
		t.Fatalf("game did not finish, phase %s round %d", state.Game.Phase, state.Game.Round)
	}
	if len(dispatcher.byOp(OpGameEnded)) != 1 {
		t.Fatalf("expected one game_ended broadcast")
	}
	if got := len(dispatcher.byOp(OpRoundEnded)); got != config.Default().Rounds {
		t.Fatalf("round_ended broadcasts = %d, want %d", got, config.Default().Rounds)
	}
	if len(scores.recorded) != 1 || scores.recorded[0].UserID != "user-1" {
		t.Fatalf("expected only user-1 settled, got %+v", scores.recorded)
	}
	if state.Seats[0] != "" || state.StandIns["user-1"] {
		t.Fatalf("stand-in seat not released after the game")
	}
	if len(dispatcher.byOp(OpHandDealt)) != 0 {
		t.Fatalf("private events leaked with no connected recipient")
	}
}

func TestMatchJoinAttempt_RejectsStrangersMidGame(t *testing.T) {
	handler := newMatchHandler()
	state, _ := newTestState(t, 1)
	seatHuman(state, 0, "user-1")
	seatBot(t, state, 1)
	state.Game = &domain.Game{Phase: domain.PhaseAssembling}

	if _, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, mockPresence{userID: "user-9"}, nil); ok {
		t.Fatalf("stranger joined a running game")
	}
	if _, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state, mockPresence{userID: "user-1"}, nil); !ok {
		t.Fatalf("seated user could not reconnect")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{app.ErrNotYourTurn, ErrCodeForbidden},
		{app.ErrNotAssembling, ErrCodeConflict},
		{domain.ErrInvalidPlay, ErrCodeBadRequest},
	}
	for _, test := range tests {
		if got := errorCode(test.err); got != test.want {
			t.Fatalf("errorCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}

func TestExtractUserIDFromToken(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": "user-1"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	got, err := extractUserIDFromToken(token)
	if err != nil || got != "user-1" {
		t.Fatalf("extractUserIDFromToken = %q, %v", got, err)
	}

	noUID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))
	if _, err := extractUserIDFromToken(noUID); err == nil {
		t.Fatalf("expected error for token without uid")
	}
	if _, err := extractUserIDFromToken("not-a-token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}
