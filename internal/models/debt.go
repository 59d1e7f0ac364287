package models

// Debt is an open obligation from one named player to another. A debt has
// exactly one transition: it is settled in full and removed. There is no
// cancellation, expiry, or partial payment.
type Debt struct {
	// ID is the per-room sequence number, stable for the life of the debt
	ID int64 `json:"id"`

	// RoomCode is the code of the room the debt belongs to
	RoomCode string `json:"-"`

	// From is the debtor's name. Not validated against the player list.
	From string `json:"from"`

	// To is the creditor's name (free text, see From)
	To string `json:"to"`

	// Amount is the amount owed, always positive
	Amount float64 `json:"amount"`

	// Note is a free-text description carried onto the settlement
	// transaction as "settle: <note>".
	Note string `json:"note"`
}
