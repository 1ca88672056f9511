package nakama

import (
	"context"
	"database/sql"

	"coding/internal/bot"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameCoding, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
		logger.Warn("Bot identities unavailable, using generated ones: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	logger.Info("Coding Go module loaded.")
	return nil
}
