package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/boardbank/boardbank/internal/repositories/room Repository

import (
	"context"

	"github.com/boardbank/boardbank/internal/models"
)

// Repository persists rooms and everything a room owns: its players, its
// transaction log, and its open debts. The room is the aggregate boundary;
// no operation in the system ever spans two rooms, so no repository call
// does either.
//
// Writers are expected to be serialized per room by the caller; the
// repository's own guarantee is that CommitRoomMutation applies either all
// of a mutation or none of it.
type Repository interface {
	// EnsureRoom returns the room for the given record's code, creating
	// it from the record if absent. Idempotent.
	EnsureRoom(ctx context.Context, input *EnsureRoomInput) (*EnsureRoomOutput, error)

	// GetRoom retrieves a room record by code
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// ListPlayers retrieves a room's players ordered by slot ascending
	ListPlayers(ctx context.Context, input *ListPlayersInput) (*ListPlayersOutput, error)

	// ListTransactions retrieves a room's transaction log in append order
	ListTransactions(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error)

	// ListDebts retrieves a room's open debts ordered by id ascending
	ListDebts(ctx context.Context, input *ListDebtsInput) (*ListDebtsOutput, error)

	// GetDebt retrieves a single open debt by id
	GetDebt(ctx context.Context, input *GetDebtInput) (*models.Debt, error)

	// CommitRoomMutation atomically applies every write in the mutation
	CommitRoomMutation(ctx context.Context, input *CommitRoomMutationInput) error

	// DeleteRoom removes a room and cascades to all records it owns
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error
}
