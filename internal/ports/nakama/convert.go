package nakama

import (
	"errors"

	"coding/internal/app"
	"coding/internal/domain"
)

// PlayCommandRequest is the client's selection for an offered turn.
type PlayCommandRequest struct {
	Line      int `json:"line"`
	CommandID int `json:"command_id"`
	TileID    int `json:"tile_id"`
}

type commandView struct {
	ID    int    `json:"id"`
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	Text  string `json:"text"`
}

type tileView struct {
	ID  int    `json:"id"`
	Var string `json:"var"`
}

type optionView struct {
	Command commandView `json:"command"`
	Lines   []int       `json:"lines"`
	TileIDs []int       `json:"tile_ids"`
}

type turnView struct {
	Color   string       `json:"color"`
	Round   int          `json:"round"`
	Options []optionView `json:"options"`
}

type stepView struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Target  string `json:"target,omitempty"`
	Effect  string `json:"effect,omitempty"`
}

type standingView struct {
	Color     string         `json:"color"`
	Name      string         `json:"name"`
	Resources map[string]int `json:"resources"`
}

type seatView struct {
	Seat      int            `json:"seat"`
	Color     string         `json:"color"`
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	IsOwner   bool           `json:"is_owner"`
	IsBot     bool           `json:"is_bot"`
	HandSize  int            `json:"hand_size"`
	Resources map[string]int `json:"resources,omitempty"`
}

type matchStateView struct {
	Tick        int64      `json:"tick"`
	OwnerSeat   int        `json:"owner_seat"`
	Phase       string     `json:"phase"`
	Round       int        `json:"round"`
	FirstPlayer string     `json:"first_player,omitempty"`
	Program     []string   `json:"program,omitempty"`
	Seats       []seatView `json:"seats"`
}

type errorView struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toCommandView(c *domain.Command) commandView {
	return commandView{ID: c.ID, Kind: string(c.Kind), Value: c.Value, Text: c.String()}
}

func toCommandViews(cmds []*domain.Command) []commandView {
	out := make([]commandView, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, toCommandView(c))
	}
	return out
}

func toTileViews(tiles []*domain.Tile) []tileView {
	out := make([]tileView, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, tileView{ID: t.ID, Var: string(t.Var)})
	}
	return out
}

func toTurnView(turn app.Turn) turnView {
	options := make([]optionView, 0, len(turn.Menu))
	for _, opt := range turn.Menu {
		ids := make([]int, 0, len(opt.Tiles))
		for _, t := range opt.Tiles {
			ids = append(ids, t.ID)
		}
		options = append(options, optionView{Command: toCommandView(opt.Command), Lines: opt.Lines, TileIDs: ids})
	}
	return turnView{Color: string(turn.Color), Round: turn.Round, Options: options}
}

func toStandingViews(standings []app.Standing) []standingView {
	out := make([]standingView, 0, len(standings))
	for _, s := range standings {
		out = append(out, standingView{Color: string(s.Color), Name: s.Name, Resources: resourceView(s.Resources)})
	}
	return out
}

func resourceView(resources map[domain.Resource]int) map[string]int {
	out := make(map[string]int, len(resources))
	for r, v := range resources {
		if r == domain.ResourceNone {
			continue
		}
		out[string(r)] = v
	}
	return out
}

func colorsView(colors []domain.Color) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		out = append(out, string(c))
	}
	return out
}

// eventMessage maps an app event to its op code and wire payload.
func eventMessage(ev app.Event) (int64, interface{}, bool) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		players := make([]map[string]string, 0, len(p.Players))
		for _, s := range p.Players {
			players = append(players, map[string]string{"color": string(s.Color), "name": s.Name})
		}
		return OpGameStarted, map[string]interface{}{
			"players":      players,
			"first_player": string(p.FirstPlayer),
			"rounds":       p.Rounds,
			"lines":        p.Lines,
		}, true
	case app.RoundStartedPayload:
		return OpRoundStarted, map[string]interface{}{"round": p.Round, "first_player": string(p.FirstPlayer)}, true
	case app.HandDealtPayload:
		return OpHandDealt, map[string]interface{}{
			"color": string(p.Color),
			"hand":  toCommandViews(p.Hand),
			"dealt": p.Dealt,
			"bonus": p.Bonus,
		}, true
	case app.TilesDrawnPayload:
		return OpTilesDrawn, map[string]interface{}{"color": string(p.Color), "tiles": toTileViews(p.Tiles)}, true
	case app.TurnOfferedPayload:
		return OpTurnOffered, toTurnView(p.Turn), true
	case app.CommandPlayedPayload:
		return OpCommandPlayed, map[string]interface{}{
			"color":   string(p.Color),
			"line":    p.Line,
			"command": p.Command,
			"var":     string(p.Var),
			"next":    string(p.Next),
		}, true
	case app.RoundAssembledPayload:
		return OpRoundAssembled, map[string]interface{}{"round": p.Round, "program": p.Listing}, true
	case app.RoundStalledPayload:
		return OpRoundStalled, map[string]interface{}{"round": p.Round, "available": p.Available}, true
	case app.ProgramRunPayload:
		trace := make([]stepView, 0, len(p.Trace))
		for _, s := range p.Trace {
			trace = append(trace, stepView{Line: s.Line, Command: s.Command, Target: string(s.Target), Effect: s.Effect})
		}
		vars := make(map[string]int, len(p.Variables))
		for v, n := range p.Variables {
			vars[string(v)] = n
		}
		return OpProgramRun, map[string]interface{}{
			"round":     p.Round,
			"trace":     trace,
			"variables": vars,
			"registers": p.Registers,
		}, true
	case app.ResourceSentPayload:
		return OpResourceSent, map[string]interface{}{
			"line":     p.Line,
			"color":    string(p.Transfer.Color),
			"resource": string(p.Transfer.Resource),
			"amount":   p.Transfer.Amount,
		}, true
	case app.FirstPlayerChangedPayload:
		return OpFirstPlayerChanged, map[string]interface{}{"from": string(p.From), "to": string(p.To)}, true
	case app.RoundEndedPayload:
		return OpRoundEnded, map[string]interface{}{"round": p.Round, "standings": toStandingViews(p.Standings)}, true
	case app.GameEndedPayload:
		return OpGameEnded, map[string]interface{}{
			"winners":   colorsView(p.Winners),
			"score":     p.Score,
			"standings": toStandingViews(p.Standings),
		}, true
	}
	return 0, nil, false
}

// errorCode classifies a use-case error for OpGameError.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrUnknownPlayer):
		return ErrCodeForbidden
	case errors.Is(err, app.ErrNotAssembling), errors.Is(err, app.ErrNotInSetup):
		return ErrCodeConflict
	default:
		return ErrCodeBadRequest
	}
}
