package models

import (
	"time"
)

// BankLabel is the label recorded on transactions that move money to or
// from the shared bank. The bank is a virtual participant, not a Player.
const BankLabel = "Bank"

// Transaction records a completed money movement. Transactions are
// append-only: once written they are never updated or deleted.
type Transaction struct {
	// ID is the per-room sequence number, assigned at append time
	ID int64 `json:"id"`

	// RoomCode is the code of the room the transaction belongs to
	RoomCode string `json:"-"`

	// Timestamp is server-assigned and monotonically non-decreasing
	// within a room in creation order.
	Timestamp time.Time `json:"ts"`

	// From is the label of the paying side. It is free text: it may be
	// BankLabel or a name with no matching player.
	From string `json:"from"`

	// To is the label of the receiving side (free text, see From)
	To string `json:"to"`

	// Amount is the amount moved, always positive
	Amount float64 `json:"amount"`

	// Note is a free-text description
	Note string `json:"note"`
}
