package room

import "github.com/boardbank/boardbank/internal/models"

// EnsureRoomInput contains parameters for fetching-or-creating a room
type EnsureRoomInput struct {
	// Room is the record to create when the code is unclaimed. Its Code
	// field is the lookup key.
	Room *models.Room
}

// EnsureRoomOutput contains the result of fetching-or-creating a room
type EnsureRoomOutput struct {
	// Room is the stored record: the existing one when the code was
	// already claimed, otherwise the newly created one.
	Room *models.Room

	// Created reports whether this call created the room
	Created bool
}

// GetRoomInput contains parameters for retrieving a room record
type GetRoomInput struct {
	Code string
}

// ListPlayersInput contains parameters for listing a room's players
type ListPlayersInput struct {
	RoomCode string
}

// ListPlayersOutput contains a room's players ordered by slot ascending
type ListPlayersOutput struct {
	Players []*models.Player
}

// ListTransactionsInput contains parameters for listing a room's transaction log
type ListTransactionsInput struct {
	RoomCode string
}

// ListTransactionsOutput contains a room's transactions in append order
type ListTransactionsOutput struct {
	Transactions []*models.Transaction
}

// ListDebtsInput contains parameters for listing a room's open debts
type ListDebtsInput struct {
	RoomCode string
}

// ListDebtsOutput contains a room's open debts ordered by id ascending
type ListDebtsOutput struct {
	Debts []*models.Debt
}

// GetDebtInput contains parameters for retrieving a single open debt
type GetDebtInput struct {
	RoomCode string
	DebtID   int64
}

// RoomMutation describes every write one core operation performs against a
// single room. The repository applies the whole mutation as one atomic
// commit, so a multi-entity operation (settling a debt touches two player
// balances, the transaction log, and the debt set) can never be observed or
// persisted half-done.
type RoomMutation struct {
	// RoomCode scopes the mutation; required
	RoomCode string

	// SaveRoom persists the room record when non-nil
	SaveRoom *models.Room

	// ResetPlayers removes every existing player record before
	// SavePlayers is applied. Used by room initialization.
	ResetPlayers bool

	// SavePlayers are player records to write, keyed by their Slot
	SavePlayers []*models.Player

	// AppendTransactions are appended to the log. IDs and their position
	// in the log are assigned by the repository; the passed records are
	// updated in place.
	AppendTransactions []*models.Transaction

	// AddDebts are opened as new debts. IDs are assigned by the
	// repository; the passed records are updated in place.
	AddDebts []*models.Debt

	// RemoveDebtIDs are debts to delete. A missing id fails the whole
	// commit with ErrDebtNotFound.
	RemoveDebtIDs []int64
}

// CommitRoomMutationInput contains the mutation to apply
type CommitRoomMutationInput struct {
	Mutation *RoomMutation
}

// DeleteRoomInput contains parameters for deleting a room and everything
// it owns
type DeleteRoomInput struct {
	Code string
}
