package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"coding/internal/domain"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"` // "random", "greedy"
}

var (
	identityMu    sync.RWMutex
	botIdentities []BotIdentity
	botByID       map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		loadErr = setIdentities(data)
	})
	return loadErr
}

func setIdentities(data []byte) error {
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	for _, identity := range identities {
		if _, err := ParseLevel(identity.Level); err != nil {
			return fmt.Errorf("bot identity %s: %w", identity.Username, err)
		}
	}

	identityMu.Lock()
	defer identityMu.Unlock()
	botIdentities = identities
	botByID = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botByID[identity.UserID] = identity
		}
	}
	return nil
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identityMu.Lock()
		defer identityMu.Unlock()

		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot": true,
				"level":  identity.Level,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			botByID[userID] = *identity
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Level: %s", identity.DisplayName, userID, identity.Level)
		}
	})
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identityMu.RLock()
	defer identityMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Level:       BotLevelGreedy.String(),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	identityMu.RLock()
	defer identityMu.RUnlock()
	_, ok := botByID[userID]
	return ok
}

// NewAgentFor builds the agent playing identity at color.
func NewAgentFor(identity BotIdentity, color domain.Color, rng *rand.Rand) (*Agent, error) {
	level, err := ParseLevel(identity.Level)
	if err != nil {
		return nil, err
	}
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	return &Agent{Color: color, Name: name, Strategy: brain}, nil
}
