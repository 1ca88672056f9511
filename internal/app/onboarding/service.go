package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"coding/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// LedgerOpened is false when the user already had a score ledger.
	LedgerOpened bool
	DisplayName  string
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	scores   ports.ScorePort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, scores ports.ScorePort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, scores: scores, rng: rng}
}

// OnboardNewUser names a new account and opens its score ledger.
// A failed profile update is reported in Result; a failed ledger is an error.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.scores == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{DisplayName: s.generateHandle()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}

	opened, err := s.scores.OpenLedger(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to open score ledger: %w", err)
	}
	result.LedgerOpened = opened
	return result, nil
}

func (s *Service) generateHandle() string {
	adjectives := []string{"Binary", "Lazy", "Greedy", "Atomic", "Mutable", "Nested", "Static", "Async", "Sparse", "Signed"}
	nouns := []string{"Pointer", "Opcode", "Register", "Buffer", "Thread", "Lambda", "Cursor", "Stack", "Nibble", "Vector"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
