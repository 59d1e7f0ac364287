package models

import (
	"encoding/json"
	"time"
)

// Room represents an isolated game session and its shared bank.
type Room struct {
	// Code is the unique room code players join with
	Code string `json:"code"`

	// TotalMoney is the money remaining in the bank. It is signed and
	// never clamped; the bank is allowed to go negative.
	TotalMoney float64 `json:"totalMoney"`

	// Money holds the bank's money-denomination records. The records are
	// opaque documents owned by the client; the server never inspects them.
	Money []json.RawMessage `json:"money"`

	// Properties holds the bank's property records (opaque, see Money)
	Properties []json.RawMessage `json:"properties"`

	// Cards holds the bank's card records (opaque, see Money)
	Cards []json.RawMessage `json:"cards"`

	// CreatedAt is when the room was first referenced
	CreatedAt time.Time `json:"createdAt"`
}
