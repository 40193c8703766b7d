package domain

import "time"

// PackPurchase is the append-only audit record of one pack transaction.
type PackPurchase struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	PackID          string    `json:"packId"`
	Cost            int       `json:"cost"`
	PurchasedAt     time.Time `json:"purchasedAt"`
	PlayersReceived []string  `json:"playersReceived"`
}
