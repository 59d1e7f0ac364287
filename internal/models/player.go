package models

// Player represents one seat at the table in a room.
//
// Players are addressed by display name throughout the API. Names are not
// required to be unique within a room, so every lookup by name resolves to
// the first match in slot order.
type Player struct {
	// RoomCode is the code of the room the player belongs to
	RoomCode string `json:"-"`

	// Name is the display name. An empty name marks an unclaimed slot
	// that the next joining player fills.
	Name string `json:"name"`

	// Balance is the player's current money. Signed and never clamped;
	// being in debt is allowed.
	Balance float64 `json:"balance"`

	// Slot is the player's stable position in the room. Slots are unique
	// per room and define both display order and join order.
	Slot int `json:"slot"`
}
