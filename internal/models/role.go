package models

// Role is the caller's role within a room. It is the only
// authorization concept in the system.
type Role string

const (
	// RoleAdmin is held by the room creator and may reset the room and
	// edit the bank inventory
	RoleAdmin Role = "admin"

	// RolePlayer is held by everyone who joins an existing room
	RolePlayer Role = "player"
)
