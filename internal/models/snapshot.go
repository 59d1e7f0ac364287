package models

import (
	"encoding/json"
)

// Snapshot is the read-only composite view of a room returned to callers:
// the room's bank fields plus its players, transaction history, and open
// debts, all captured at a single consistent point in time.
type Snapshot struct {
	// Code is the room code
	Code string `json:"code"`

	// TotalMoney is the bank's remaining money
	TotalMoney float64 `json:"totalMoney"`

	// Players is ordered by slot ascending
	Players []*Player `json:"players"`

	// Transactions is ordered by timestamp ascending, creation order
	// breaking ties.
	Transactions []*Transaction `json:"transactions"`

	// Debts is in natural storage order (id ascending)
	Debts []*Debt `json:"debts"`

	// Money, Properties, and Cards are the opaque bank inventories
	Money      []json.RawMessage `json:"money"`
	Properties []json.RawMessage `json:"properties"`
	Cards      []json.RawMessage `json:"cards"`
}

// DebtTotals sums the open debts involving the named player: owes is the
// total where the player is the debtor, owed the total where the player is
// the creditor. This is a caller-side convenience over the snapshot; it is
// not stored anywhere.
func (s *Snapshot) DebtTotals(playerName string) (owes, owed float64) {
	for _, d := range s.Debts {
		if d.From == playerName {
			owes += d.Amount
		}
		if d.To == playerName {
			owed += d.Amount
		}
	}
	return owes, owed
}
