package game

import "errors"

// Submission errors. Each leaves the game state untouched and tells the
// caller exactly what to fix.
var (
	ErrGameOver              = errors.New("game has already ended")
	ErrUnknownAction         = errors.New("action not in scenario roster")
	ErrInsufficientResources = errors.New("insufficient resources for action")
	ErrActionUnavailable     = errors.New("action unavailable at current risk level")
	ErrWrongArena            = errors.New("action category does not fit the scheduled matrix")
	ErrSettlementAction      = errors.New("settlement actions resolve through the settlement path")

	// Settlement protocol errors.
	ErrSettlementIneligible = errors.New("settlement not available yet")
	ErrNoSettlementZone     = errors.New("position and trust admit no valid settlement range")
	ErrNoPendingOffer       = errors.New("no settlement offer pending")
	ErrOfferPending         = errors.New("a settlement offer is already pending")
	ErrNotYourOffer         = errors.New("offer must be answered by the other side")
)
