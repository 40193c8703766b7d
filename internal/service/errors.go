package service

import (
	"errors"

	"github.com/hoopcrest/hoopcrest/internal/ledger"
)

// ErrInsufficientFunds surfaces directly to the user; retrying does not help.
var ErrInsufficientFunds = ledger.ErrInsufficientFunds

// ErrNoPlayersAvailable means the catalog has no players even at Common.
// Broken deployment, not a user-recoverable condition.
var ErrNoPlayersAvailable = errors.New("no players available")

// ErrNotOwned is returned when selling a card that is not in the collection.
var ErrNotOwned = errors.New("card not owned")

// ErrCooldownActive is returned when a daily claim or mini-game is attempted
// before its cooldown expires.
var ErrCooldownActive = errors.New("cooldown active")

// ErrInvalidBet is returned for coin flip bets outside the allowed range.
var ErrInvalidBet = errors.New("invalid bet")
