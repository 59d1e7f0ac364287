package bank

import (
	"encoding/json"

	"github.com/boardbank/boardbank/internal/common/clock"
	"github.com/boardbank/boardbank/internal/common/roomcode"
	"github.com/boardbank/boardbank/internal/models"
	roomRepo "github.com/boardbank/boardbank/internal/repositories/room"
)

const (
	// DefaultPlayerCount is the number of seats a fresh room starts with
	DefaultPlayerCount = 4

	// DefaultStartingBalance is the balance given to every new seat
	DefaultStartingBalance = 1500.0

	// DefaultBankTotal is the money in a fresh room's bank
	DefaultBankTotal = 20580.0
)

// TransferDirection selects which way a bank transfer moves money
type TransferDirection string

const (
	// DirectionFromBank moves money from the bank to a player
	DirectionFromBank = TransferDirection("from_bank")

	// DirectionToBank moves money from a player to the bank
	DirectionToBank = TransferDirection("to_bank")
)

// Config holds configuration for the bank service
type Config struct {
	// RoomRepo is the room aggregate repository
	RoomRepo roomRepo.Repository

	// Clock provides server-assigned timestamps
	Clock clock.Clock

	// CodeGenerator mints codes for new rooms
	CodeGenerator roomcode.Generator

	// PlayerCount is the number of seats created with a new room.
	// Zero means DefaultPlayerCount.
	PlayerCount int

	// StartingBalance is the balance assigned to new seats.
	// Zero means DefaultStartingBalance.
	StartingBalance float64

	// BankTotal is the bank money a fresh room starts with.
	// Zero means DefaultBankTotal.
	BankTotal float64
}

// CreateRoomInput holds the parameters for creating a room
type CreateRoomInput struct {
	// AdminName is the creating player's name, placed in slot 0
	AdminName string
}

// CreateRoomOutput holds the result of creating a room
type CreateRoomOutput struct {
	// Snapshot is the freshly initialized room
	Snapshot *models.Snapshot

	// Role is the role granted to the caller
	Role models.Role
}

// JoinRoomInput holds the parameters for joining a room
type JoinRoomInput struct {
	// RoomCode identifies the room to join
	RoomCode string

	// PlayerName is the joining player's name
	PlayerName string
}

// JoinRoomOutput holds the result of joining a room
type JoinRoomOutput struct {
	// Player is the seat the caller now occupies
	Player *models.Player

	// Snapshot is the room after the join
	Snapshot *models.Snapshot

	// Role is the role granted to the caller
	Role models.Role
}

// InitializeRoomInput holds the parameters for rebuilding a room's seats
type InitializeRoomInput struct {
	// RoomCode identifies the room
	RoomCode string

	// AdminName is placed in slot 0 of the rebuilt roster
	AdminName string

	// PlayerCount is the exact number of seats to create
	PlayerCount int

	// Role is the caller's role; only admins may initialize
	Role models.Role
}

// InitializeRoomOutput holds the result of rebuilding a room's seats
type InitializeRoomOutput struct {
	// Snapshot is the room after the rebuild
	Snapshot *models.Snapshot
}

// GetRoomSnapshotInput holds the parameters for reading a room
type GetRoomSnapshotInput struct {
	// RoomCode identifies the room, created on first reference
	RoomCode string
}

// GetRoomSnapshotOutput holds the result of reading a room
type GetRoomSnapshotOutput struct {
	// Snapshot is the current room state
	Snapshot *models.Snapshot

	// Created reports whether this read created the room
	Created bool
}

// ListPlayersInput holds the parameters for listing a room's players
type ListPlayersInput struct {
	// RoomCode identifies the room
	RoomCode string
}

// ListPlayersOutput holds a room's players in slot order
type ListPlayersOutput struct {
	// Players is ordered by slot ascending; empty for unknown rooms
	Players []*models.Player
}

// UpdatePlayerInput holds the parameters for overwriting a player's fields
type UpdatePlayerInput struct {
	// RoomCode identifies the room
	RoomCode string

	// Name selects the player (first match in slot order)
	Name string

	// Balance, when set, replaces the player's balance
	Balance *float64

	// NewName, when set, replaces the player's name. Renaming to the
	// empty string releases the seat for the next joiner.
	NewName *string
}

// UpdatePlayerOutput holds the updated player
type UpdatePlayerOutput struct {
	// Player is the player after the update
	Player *models.Player
}

// UpdateInventoryInput holds the parameters for replacing bank inventories.
// A nil slice leaves that inventory unchanged; a non-nil slice replaces it
// wholesale, so an empty non-nil slice clears it.
type UpdateInventoryInput struct {
	// RoomCode identifies the room
	RoomCode string

	// Role is the caller's role; only admins may edit the bank
	Role models.Role

	// Money replaces the bank's money records when non-nil
	Money []json.RawMessage

	// Properties replaces the bank's property records when non-nil
	Properties []json.RawMessage

	// Cards replaces the bank's card records when non-nil
	Cards []json.RawMessage
}

// UpdateInventoryOutput holds the result of replacing bank inventories
type UpdateInventoryOutput struct {
	// Snapshot is the room after the update
	Snapshot *models.Snapshot
}

// AddDebtInput holds the parameters for recording a debt
type AddDebtInput struct {
	// RoomCode identifies the room
	RoomCode string

	// From is the debtor's name (free text, not validated against players)
	From string

	// To is the creditor's name (free text)
	To string

	// Amount is the amount owed, must be positive
	Amount float64

	// Note is an optional description
	Note string
}

// AddDebtOutput holds the result of recording a debt
type AddDebtOutput struct {
	// Debt is the recorded debt with its assigned id
	Debt *models.Debt

	// Debts is the room's full open-debt list, id ascending
	Debts []*models.Debt
}

// SettleDebtInput holds the parameters for settling a debt. DebtID wins
// when both selectors are present; a zero id is treated as absent.
type SettleDebtInput struct {
	// RoomCode identifies the room
	RoomCode string

	// DebtID selects the debt by its stable id
	DebtID *int64

	// DebtIndex selects the debt by position in the id-ascending list.
	// Positions shift as debts are settled, so ids are the reliable
	// selector; the index form is kept for older clients.
	DebtIndex *int
}

// SettleDebtOutput holds the result of settling a debt
type SettleDebtOutput struct {
	// Snapshot is the room after the settlement
	Snapshot *models.Snapshot
}

// AddTransactionInput holds the parameters for a direct transfer
type AddTransactionInput struct {
	// RoomCode identifies the room
	RoomCode string

	// From is the paying side's label (free text, may be the bank label)
	From string

	// To is the receiving side's label (free text)
	To string

	// Amount is the amount moved, must be positive
	Amount float64

	// Note is an optional description
	Note string
}

// AddTransactionOutput holds the result of a direct transfer
type AddTransactionOutput struct {
	// Transaction is the recorded transaction with its assigned id
	Transaction *models.Transaction

	// Transactions is the room's full log, timestamp ascending
	Transactions []*models.Transaction
}

// BankTransferInput holds the parameters for a transfer between the bank
// and a player
type BankTransferInput struct {
	// RoomCode identifies the room
	RoomCode string

	// PlayerName selects the player (first match in slot order)
	PlayerName string

	// Amount is the amount moved, must be positive
	Amount float64

	// Direction selects which way the money moves
	Direction TransferDirection

	// Note is an optional description folded into the transaction note
	Note string
}

// BankTransferOutput holds the result of a bank transfer
type BankTransferOutput struct {
	// Snapshot is the room after the transfer
	Snapshot *models.Snapshot
}
