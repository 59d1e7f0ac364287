package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/boardbank/boardbank/internal/models"
	roomRepo "github.com/boardbank/boardbank/internal/repositories/room"
)

// buildSnapshot assembles the composite room view. The caller must hold
// the room's lock so the reads observe one consistent state.
func (s *service) buildSnapshot(ctx context.Context, code string) (*models.Snapshot, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	players, err := s.listPlayers(ctx, code)
	if err != nil {
		return nil, err
	}

	txsOutput, err := s.roomRepo.ListTransactions(ctx, &roomRepo.ListTransactionsInput{RoomCode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := txsOutput.Transactions
	sortTransactions(transactions)

	debtsOutput, err := s.roomRepo.ListDebts(ctx, &roomRepo.ListDebtsInput{RoomCode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	snapshot := &models.Snapshot{
		Code:         room.Code,
		TotalMoney:   room.TotalMoney,
		Players:      players,
		Transactions: transactions,
		Debts:        debtsOutput.Debts,
		Money:        room.Money,
		Properties:   room.Properties,
		Cards:        room.Cards,
	}

	// Older records may hold nulls; clients always get arrays
	if snapshot.Money == nil {
		snapshot.Money = []json.RawMessage{}
	}
	if snapshot.Properties == nil {
		snapshot.Properties = []json.RawMessage{}
	}
	if snapshot.Cards == nil {
		snapshot.Cards = []json.RawMessage{}
	}

	return snapshot, nil
}

// sortTransactions orders the log by timestamp ascending. Input arrives in
// id order and the sort is stable, so equal timestamps keep append order.
func sortTransactions(transactions []*models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})
}
