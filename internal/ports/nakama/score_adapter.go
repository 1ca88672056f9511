package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coding/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	scoreCollection = "scores"
	scoreLedgerKey  = "ledger_v1"

	walletVP    = "vp"
	walletWins  = "wins"
	walletGames = "games"
)

// NakamaScoreAdapter keeps score totals in the Nakama wallet and marks opened
// ledgers in storage.
type NakamaScoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaScoreAdapter creates a new score adapter.
func NewNakamaScoreAdapter(nk runtime.NakamaModule) *NakamaScoreAdapter {
	return &NakamaScoreAdapter{nk: nk}
}

// OpenLedger writes the ledger marker and zeroes the score counters atomically.
func (a *NakamaScoreAdapter) OpenLedger(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}

	value, err := json.Marshal(map[string]interface{}{
		"opened_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal ledger marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      scoreCollection,
			Key:             scoreLedgerKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{walletVP: 0, walletWins: 0, walletGames: 0},
			Metadata:  map[string]interface{}{"reason": "ledger_opened"},
		},
	}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open score ledger: %w", err)
	}
	return true, nil
}

// RecordScores adds VP, a played game and possibly a win to each user's wallet.
func (a *NakamaScoreAdapter) RecordScores(ctx context.Context, updates []ports.ScoreUpdate) error {
	for _, update := range updates {
		changes := map[string]int64{
			walletVP:    update.VP,
			walletGames: 1,
		}
		if update.Winner {
			changes[walletWins] = 1
		}

		if _, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true); err != nil {
			return fmt.Errorf("failed to record score for user %s: %w", update.UserID, err)
		}
	}
	return nil
}

var _ ports.ScorePort = (*NakamaScoreAdapter)(nil)
