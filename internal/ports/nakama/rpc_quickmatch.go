package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const quickMatchScan = 10

// QuickMatchResponse tells the client which match to join.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Players int    `json:"players"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// lobbyQuery matches lobbies of this game that still have a free seat.
func lobbyQuery() string {
	return fmt.Sprintf("+label.game:%s +label.phase:lobby +label.%s:>=1", labelGame, MatchLabelKey_OpenSeats)
}

// fullestLobby prefers the lobby closest to a full table so games start sooner.
func fullestLobby(matches []*api.Match) *api.Match {
	var best *api.Match
	for _, m := range matches {
		if best == nil || m.GetSize() > best.GetSize() {
			best = m
		}
	}
	return best
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	minSize, maxSize := 1, 3
	matches, err := nk.MatchList(ctx, quickMatchScan, true, "", &minSize, &maxSize, lobbyQuery())
	if err != nil {
		logger.Error("QuickMatch: MatchList failed: %v", err)
		return "", fmt.Errorf("list lobbies: %w", err)
	}

	resp := QuickMatchResponse{}
	if lobby := fullestLobby(matches); lobby != nil {
		resp.MatchID, resp.Players = lobby.GetMatchId(), int(lobby.GetSize())
	} else {
		// Seats and the owner are assigned in MatchJoin.
		matchID, err := nk.MatchCreate(ctx, MatchNameCoding, map[string]interface{}{})
		if err != nil {
			logger.Error("QuickMatch: MatchCreate failed: %v", err)
			return "", fmt.Errorf("create lobby: %w", err)
		}
		resp.MatchID, resp.IsNew = matchID, true
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("marshal quick match response: %w", err)
	}
	return string(out), nil
}
