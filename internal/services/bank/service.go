package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boardbank/boardbank/internal/common/clock"
	"github.com/boardbank/boardbank/internal/common/keylock"
	"github.com/boardbank/boardbank/internal/common/roomcode"
	"github.com/boardbank/boardbank/internal/models"
	roomRepo "github.com/boardbank/boardbank/internal/repositories/room"
)

type service struct {
	roomRepo        roomRepo.Repository
	clock           clock.Clock
	codeGenerator   roomcode.Generator
	playerCount     int
	startingBalance float64
	bankTotal       float64

	// locks serializes operations per room code: write lock for every
	// mutating operation, read lock for snapshot reads. Different rooms
	// never contend.
	locks *keylock.KeyedRWMutex
}

// New creates a new bank service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RoomRepo == nil {
		return nil, errors.New("room repository cannot be nil")
	}

	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	if cfg.CodeGenerator == nil {
		return nil, errors.New("code generator cannot be nil")
	}

	if cfg.PlayerCount < 0 {
		return nil, errors.New("player count cannot be negative")
	}

	playerCount := cfg.PlayerCount
	if playerCount == 0 {
		playerCount = DefaultPlayerCount
	}

	startingBalance := cfg.StartingBalance
	if startingBalance == 0 {
		startingBalance = DefaultStartingBalance
	}

	bankTotal := cfg.BankTotal
	if bankTotal == 0 {
		bankTotal = DefaultBankTotal
	}

	return &service{
		roomRepo:        cfg.RoomRepo,
		clock:           cfg.Clock,
		codeGenerator:   cfg.CodeGenerator,
		playerCount:     playerCount,
		startingBalance: startingBalance,
		bankTotal:       bankTotal,
		locks:           keylock.New(),
	}, nil
}

// CreateRoom mints a room code, seeds the default seats with the admin in
// slot 0, and returns the new room
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input == nil {
		return nil, ErrInvalidRequest
	}

	adminName := strings.TrimSpace(input.AdminName)
	if adminName == "" {
		return nil, ErrInvalidRequest
	}

	code := s.codeGenerator.NewCode()

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	if err := s.rebuildSeats(ctx, code, adminName, s.playerCount); err != nil {
		return nil, err
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &CreateRoomOutput{
		Snapshot: snapshot,
		Role:     models.RoleAdmin,
	}, nil
}

// JoinRoom seats a player in an existing room. The lowest unclaimed slot
// wins and keeps whatever balance it held while empty; with no unclaimed
// slot a fresh seat is added after the highest.
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	playerName := strings.TrimSpace(input.PlayerName)
	if playerName == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	if _, err := s.getRoom(ctx, code); err != nil {
		return nil, err
	}

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	seat := firstPlayerByName(players, "")
	if seat != nil {
		seat.Name = playerName
	} else {
		slot := 0
		if len(players) > 0 {
			slot = players[len(players)-1].Slot + 1
		}
		seat = &models.Player{
			Name:    playerName,
			Balance: s.startingBalance,
			Slot:    slot,
		}
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:    code,
			SavePlayers: []*models.Player{seat},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &JoinRoomOutput{
		Player:   seat,
		Snapshot: snapshot,
		Role:     models.RolePlayer,
	}, nil
}

// InitializeRoom destructively rebuilds a room's seats: the old roster is
// wiped, PlayerCount fresh seats are created, and the admin takes slot 0
func (s *service) InitializeRoom(ctx context.Context, input *InitializeRoomInput) (*InitializeRoomOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	if input.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	adminName := strings.TrimSpace(input.AdminName)
	if adminName == "" {
		return nil, ErrInvalidRequest
	}

	if input.PlayerCount < 0 {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	if err := s.rebuildSeats(ctx, code, adminName, input.PlayerCount); err != nil {
		return nil, err
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &InitializeRoomOutput{Snapshot: snapshot}, nil
}

// GetRoomSnapshot reads a room, creating it on first reference. Creation
// makes a bare room with no seats; only CreateRoom and InitializeRoom
// seed a roster.
func (s *service) GetRoomSnapshot(ctx context.Context, input *GetRoomSnapshotInput) (*GetRoomSnapshotOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	// Creation is a single SETNX, so the read lock is enough; it only
	// has to keep the snapshot from observing half a commit.
	s.locks.RLock(code)
	defer s.locks.RUnlock(code)

	output, err := s.roomRepo.EnsureRoom(ctx, &roomRepo.EnsureRoomInput{Room: s.newRoomRecord(code)})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure room: %w", err)
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &GetRoomSnapshotOutput{
		Snapshot: snapshot,
		Created:  output.Created,
	}, nil
}

// ListPlayers returns a room's players in slot order. Unknown rooms yield
// an empty list, not an error.
func (s *service) ListPlayers(ctx context.Context, input *ListPlayersInput) (*ListPlayersOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	s.locks.RLock(input.RoomCode)
	defer s.locks.RUnlock(input.RoomCode)

	players, err := s.listPlayers(ctx, input.RoomCode)
	if err != nil {
		return nil, err
	}

	return &ListPlayersOutput{Players: players}, nil
}

// UpdatePlayer overwrites the balance and/or name of the first player
// matching the given name
func (s *service) UpdatePlayer(ctx context.Context, input *UpdatePlayerInput) (*UpdatePlayerOutput, error) {
	if input == nil || input.RoomCode == "" || input.Name == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	player := firstPlayerByName(players, input.Name)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	if input.Balance != nil {
		player.Balance = *input.Balance
	}
	if input.NewName != nil {
		player.Name = *input.NewName
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:    code,
			SavePlayers: []*models.Player{player},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return &UpdatePlayerOutput{Player: player}, nil
}

// UpdateInventory replaces whichever bank inventories the input carries.
// The records are opaque to the server and stored as given.
func (s *service) UpdateInventory(ctx context.Context, input *UpdateInventoryInput) (*UpdateInventoryOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	if input.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Money != nil {
		room.Money = input.Money
	}
	if input.Properties != nil {
		room.Properties = input.Properties
	}
	if input.Cards != nil {
		room.Cards = input.Cards
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode: code,
			SaveRoom: room,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &UpdateInventoryOutput{Snapshot: snapshot}, nil
}

// AddDebt records an obligation between two named players. Names are not
// validated against the roster; a debt may name players who have not
// joined yet.
func (s *service) AddDebt(ctx context.Context, input *AddDebtInput) (*AddDebtOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	if input.Amount <= 0 || input.From == "" || input.To == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	if _, err := s.getRoom(ctx, code); err != nil {
		return nil, err
	}

	debt := &models.Debt{
		From:   input.From,
		To:     input.To,
		Amount: input.Amount,
		Note:   input.Note,
	}

	err := s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode: code,
			AddDebts: []*models.Debt{debt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record debt: %w", err)
	}

	debtsOutput, err := s.roomRepo.ListDebts(ctx, &roomRepo.ListDebtsInput{RoomCode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	return &AddDebtOutput{
		Debt:  debt,
		Debts: debtsOutput.Debts,
	}, nil
}

// SettleDebt pays a debt in full: debtor loses the amount, creditor gains
// it, one settlement transaction is appended, and the debt is removed,
// all in a single commit. A side naming no current player is skipped;
// the transaction still records both labels.
func (s *service) SettleDebt(ctx context.Context, input *SettleDebtInput) (*SettleDebtOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	debt, err := s.resolveDebt(ctx, code, input.DebtID, input.DebtIndex)
	if err != nil {
		return nil, err
	}

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	saves := make([]*models.Player, 0, 2)

	payer := firstPlayerByName(players, debt.From)
	if payer != nil {
		payer.Balance -= debt.Amount
		saves = append(saves, payer)
	} else {
		slog.Warn("settling debt with no seated debtor",
			"room", code, "debt_id", debt.ID, "player", debt.From)
	}

	payee := firstPlayerByName(players, debt.To)
	if payee != nil {
		payee.Balance += debt.Amount
		saves = append(saves, payee)
	} else {
		slog.Warn("settling debt with no seated creditor",
			"room", code, "debt_id", debt.ID, "player", debt.To)
	}

	tx := &models.Transaction{
		Timestamp: s.clock.Now(),
		From:      debt.From,
		To:        debt.To,
		Amount:    debt.Amount,
		Note:      "settle: " + debt.Note,
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:           code,
			SavePlayers:        saves,
			AppendTransactions: []*models.Transaction{tx},
			RemoveDebtIDs:      []int64{debt.ID},
		},
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrDebtNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, fmt.Errorf("failed to settle debt: %w", err)
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &SettleDebtOutput{Snapshot: snapshot}, nil
}

// AddTransaction records a direct transfer between two labels. A side
// matching a seated player has its balance adjusted; any other label
// (the bank, a typo, a departed player) is recorded but moves nothing.
func (s *service) AddTransaction(ctx context.Context, input *AddTransactionInput) (*AddTransactionOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	if input.Amount <= 0 || input.From == "" || input.To == "" {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	if _, err := s.getRoom(ctx, code); err != nil {
		return nil, err
	}

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	saves := make([]*models.Player, 0, 2)

	if payer := firstPlayerByName(players, input.From); payer != nil {
		payer.Balance -= input.Amount
		saves = append(saves, payer)
	}
	if payee := firstPlayerByName(players, input.To); payee != nil {
		payee.Balance += input.Amount
		saves = append(saves, payee)
	}

	tx := &models.Transaction{
		Timestamp: s.clock.Now(),
		From:      input.From,
		To:        input.To,
		Amount:    input.Amount,
		Note:      input.Note,
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:           code,
			SavePlayers:        saves,
			AppendTransactions: []*models.Transaction{tx},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	txsOutput, err := s.roomRepo.ListTransactions(ctx, &roomRepo.ListTransactionsInput{RoomCode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := txsOutput.Transactions
	sortTransactions(transactions)

	return &AddTransactionOutput{
		Transaction:  tx,
		Transactions: transactions,
	}, nil
}

// BankTransfer moves money between the bank and a seated player. The bank
// side is unbounded: TotalMoney may go negative and is never clamped.
func (s *service) BankTransfer(ctx context.Context, input *BankTransferInput) (*BankTransferOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrInvalidRequest
	}

	if input.Amount <= 0 || input.PlayerName == "" {
		return nil, ErrInvalidRequest
	}

	if input.Direction != DirectionFromBank && input.Direction != DirectionToBank {
		return nil, ErrInvalidRequest
	}

	code := input.RoomCode

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	player := firstPlayerByName(players, input.PlayerName)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	tx := &models.Transaction{
		Timestamp: s.clock.Now(),
		Amount:    input.Amount,
	}

	if input.Direction == DirectionFromBank {
		room.TotalMoney -= input.Amount
		player.Balance += input.Amount
		tx.From = models.BankLabel
		tx.To = player.Name
		tx.Note = models.BankLabel + " → " + player.Name
	} else {
		room.TotalMoney += input.Amount
		player.Balance -= input.Amount
		tx.From = player.Name
		tx.To = models.BankLabel
		tx.Note = player.Name + " → " + models.BankLabel
	}
	if input.Note != "" {
		tx.Note += ": " + input.Note
	}

	err = s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:           code,
			SaveRoom:           room,
			SavePlayers:        []*models.Player{player},
			AppendTransactions: []*models.Transaction{tx},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer: %w", err)
	}

	snapshot, err := s.buildSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	return &BankTransferOutput{Snapshot: snapshot}, nil
}

// newRoomRecord builds a fresh room with the configured bank total and
// empty inventories
func (s *service) newRoomRecord(code string) *models.Room {
	return &models.Room{
		Code:       code,
		TotalMoney: s.bankTotal,
		Money:      []json.RawMessage{},
		Properties: []json.RawMessage{},
		Cards:      []json.RawMessage{},
		CreatedAt:  s.clock.Now(),
	}
}

// rebuildSeats ensures the room exists, wipes its roster, and creates
// count fresh seats with the admin in slot 0
func (s *service) rebuildSeats(ctx context.Context, code, adminName string, count int) error {
	if _, err := s.roomRepo.EnsureRoom(ctx, &roomRepo.EnsureRoomInput{Room: s.newRoomRecord(code)}); err != nil {
		return fmt.Errorf("failed to ensure room: %w", err)
	}

	players := make([]*models.Player, 0, count)
	for i := 0; i < count; i++ {
		name := ""
		if i == 0 {
			name = adminName
		}
		players = append(players, &models.Player{
			Name:    name,
			Balance: s.startingBalance,
			Slot:    i,
		})
	}

	err := s.roomRepo.CommitRoomMutation(ctx, &roomRepo.CommitRoomMutationInput{
		Mutation: &roomRepo.RoomMutation{
			RoomCode:     code,
			ResetPlayers: true,
			SavePlayers:  players,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild seats: %w", err)
	}

	return nil
}

// resolveDebt picks the debt to settle: by id when set and nonzero,
// otherwise by position in the id-ascending list. Anything unresolvable
// is ErrDebtNotFound.
func (s *service) resolveDebt(ctx context.Context, code string, id *int64, idx *int) (*models.Debt, error) {
	if id != nil && *id != 0 {
		debt, err := s.roomRepo.GetDebt(ctx, &roomRepo.GetDebtInput{RoomCode: code, DebtID: *id})
		if err != nil {
			if errors.Is(err, roomRepo.ErrDebtNotFound) {
				return nil, ErrDebtNotFound
			}
			return nil, fmt.Errorf("failed to get debt: %w", err)
		}
		return debt, nil
	}

	if idx != nil {
		output, err := s.roomRepo.ListDebts(ctx, &roomRepo.ListDebtsInput{RoomCode: code})
		if err != nil {
			return nil, fmt.Errorf("failed to list debts: %w", err)
		}
		if *idx < 0 || *idx >= len(output.Debts) {
			return nil, ErrDebtNotFound
		}
		return output.Debts[*idx], nil
	}

	return nil, ErrDebtNotFound
}

// getRoom reads a room record, translating the repository's missing-room
// sentinel into the service taxonomy
func (s *service) getRoom(ctx context.Context, code string) (*models.Room, error) {
	room, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{Code: code})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (s *service) listPlayers(ctx context.Context, code string) ([]*models.Player, error) {
	output, err := s.roomRepo.ListPlayers(ctx, &roomRepo.ListPlayersInput{RoomCode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return output.Players, nil
}

// firstPlayerByName returns the first player in slot order with the given
// name, or nil. Names are not unique; first match is the contract
// everywhere a name selects a player. The empty name finds the first
// unclaimed seat.
func firstPlayerByName(players []*models.Player, name string) *models.Player {
	for _, p := range players {
		if p.Name == name {
			return p
		}
	}

	return nil
}
