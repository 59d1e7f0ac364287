package bank

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/boardbank/boardbank/internal/services/bank Service

// Service is the room ledger: it owns every rule about rooms, seats,
// balances, debts, and the transaction log. Each method is one atomic
// operation on a single room.
type Service interface {
	// CreateRoom mints a room code, initializes the default seats with
	// the admin in slot 0, and grants the caller the admin role
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// JoinRoom seats a player in an existing room: the lowest unclaimed
	// slot when one exists, otherwise a new slot after the highest.
	// Joining is not idempotent; joining twice claims two seats.
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error)

	// InitializeRoom destructively rebuilds a room's seats (admin only)
	InitializeRoom(ctx context.Context, input *InitializeRoomInput) (*InitializeRoomOutput, error)

	// GetRoomSnapshot returns a consistent snapshot of a room, creating
	// the room on first reference
	GetRoomSnapshot(ctx context.Context, input *GetRoomSnapshotInput) (*GetRoomSnapshotOutput, error)

	// ListPlayers returns a room's players in slot order
	ListPlayers(ctx context.Context, input *ListPlayersInput) (*ListPlayersOutput, error)

	// UpdatePlayer overwrites a player's balance and/or name
	UpdatePlayer(ctx context.Context, input *UpdatePlayerInput) (*UpdatePlayerOutput, error)

	// UpdateInventory replaces the bank's opaque inventories (admin only)
	UpdateInventory(ctx context.Context, input *UpdateInventoryInput) (*UpdateInventoryOutput, error)

	// AddDebt records an obligation between two named players
	AddDebt(ctx context.Context, input *AddDebtInput) (*AddDebtOutput, error)

	// SettleDebt pays a debt in full: moves the amount between the named
	// players, appends the settlement transaction, and removes the debt,
	// all atomically
	SettleDebt(ctx context.Context, input *SettleDebtInput) (*SettleDebtOutput, error)

	// AddTransaction records a direct transfer between two labels,
	// adjusting the balances of whichever sides name real players
	AddTransaction(ctx context.Context, input *AddTransactionInput) (*AddTransactionOutput, error)

	// BankTransfer moves money between the bank and a player
	BankTransfer(ctx context.Context, input *BankTransferInput) (*BankTransferOutput, error)
}
