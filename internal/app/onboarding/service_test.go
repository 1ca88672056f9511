package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"coding/internal/ports"
)

type fakeAccountPort struct {
	updateErr error
	names     []string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.names = append(f.names, displayName)
	return f.updateErr
}

type fakeScorePort struct {
	openErr error
	opened  bool
	calls   []string
}

func (f *fakeScorePort) OpenLedger(ctx context.Context, userID string) (bool, error) {
	f.calls = append(f.calls, userID)
	if f.openErr != nil {
		return false, f.openErr
	}
	return f.opened, nil
}

func (f *fakeScorePort) RecordScores(ctx context.Context, updates []ports.ScoreUpdate) error {
	return nil
}

func TestOnboardNewUser_OpensLedger(t *testing.T) {
	accounts := &fakeAccountPort{}
	scores := &fakeScorePort{opened: true}
	service := NewService(accounts, scores, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}
	if !result.LedgerOpened || len(scores.calls) != 1 || scores.calls[0] != "user-1" {
		t.Fatalf("ledger calls = %v, opened = %t", scores.calls, result.LedgerOpened)
	}
	if len(accounts.names) != 1 || accounts.names[0] != result.DisplayName {
		t.Fatalf("profile names = %v, want %q", accounts.names, result.DisplayName)
	}
}

func TestOnboardNewUser_ProfileFailureStillOpensLedger(t *testing.T) {
	scores := &fakeScorePort{opened: true}
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, scores, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}
	if len(scores.calls) != 1 {
		t.Fatalf("Expected 1 ledger call, got %d", len(scores.calls))
	}
}

func TestOnboardNewUser_LedgerFailureReturnsError(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeScorePort{openErr: errors.New("storage failed")}, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when the ledger cannot be opened")
	}
}

func TestOnboardNewUser_LedgerAlreadyOpen(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeScorePort{opened: false}, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.LedgerOpened {
		t.Fatal("Expected ledger to be reported as already open")
	}
}

func TestOnboardNewUser_NotConfigured(t *testing.T) {
	if _, err := NewService(nil, nil, nil).OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error for unconfigured service")
	}
}

func TestGenerateHandleIsDeterministicPerSeed(t *testing.T) {
	a := NewService(nil, nil, rand.New(rand.NewSource(5))).generateHandle()
	b := NewService(nil, nil, rand.New(rand.NewSource(5))).generateHandle()
	if a != b || strings.TrimSpace(a) == "" {
		t.Fatalf("handles %q and %q differ", a, b)
	}
}
