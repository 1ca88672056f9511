package app

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
const MinPlayersToStartGame = 2

// maxRejectedDecisions bounds how often PlayGame re-offers the same decision
// point to a decider that keeps answering with invalid plays.
const maxRejectedDecisions = 100
