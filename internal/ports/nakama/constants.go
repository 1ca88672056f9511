package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameCoding is the authoritative match handler name registered with Nakama.
	MatchNameCoding = "coding_match"

	// labelGame identifies this game's matches in label queries.
	labelGame = "coding"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpPlayCommand int64 = 2

	// Server -> Client events
	OpMatchState         int64 = 100
	OpGameStarted        int64 = 101
	OpRoundStarted       int64 = 102
	OpHandDealt          int64 = 103 // send privately
	OpTilesDrawn         int64 = 104 // send privately
	OpTurnOffered        int64 = 105 // send privately
	OpCommandPlayed      int64 = 106
	OpRoundAssembled     int64 = 107
	OpRoundStalled       int64 = 108
	OpProgramRun         int64 = 109
	OpResourceSent       int64 = 110
	OpFirstPlayerChanged int64 = 111
	OpRoundEnded         int64 = 112
	OpGameEnded          int64 = 113
	OpGameError          int64 = 199
)

// Error codes carried by OpGameError.
const (
	ErrCodeBadRequest = 400
	ErrCodeForbidden  = 403
	ErrCodeConflict   = 409
)
