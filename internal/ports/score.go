package ports

import "context"

// ScoreUpdate is one participant's result at the end of a game.
type ScoreUpdate struct {
	UserID   string
	VP       int64
	Winner   bool
	Metadata map[string]interface{}
}

// ScorePort persists per-user game results.
type ScorePort interface {
	// OpenLedger creates the user's score ledger. Returns opened=false when it already exists.
	OpenLedger(ctx context.Context, userID string) (bool, error)

	// RecordScores adds the results of one finished game.
	RecordScores(ctx context.Context, updates []ScoreUpdate) error
}
