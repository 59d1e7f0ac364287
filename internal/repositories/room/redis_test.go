package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/boardbank/boardbank/internal/models"
)

type redisRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      *redisRepository
	ctx       context.Context
}

func (s *redisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.miniRedis = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.ctx = context.Background()
}

func (s *redisRepositoryTestSuite) TearDownTest() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *redisRepositoryTestSuite) newRoom(code string) *models.Room {
	return &models.Room{
		Code:       code,
		TotalMoney: 20580,
		Money:      []json.RawMessage{},
		Properties: []json.RawMessage{},
		Cards:      []json.RawMessage{},
		CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *redisRepositoryTestSuite) TestNewRedis_ValidatesConfig() {
	repo, err := NewRedis(nil)
	s.Error(err)
	s.Nil(repo)

	repo, err = NewRedis(&Config{})
	s.Error(err)
	s.Nil(repo)
}

func (s *redisRepositoryTestSuite) TestEnsureRoom_CreatesWhenAbsent() {
	output, err := s.repo.EnsureRoom(s.ctx, &EnsureRoomInput{Room: s.newRoom("AB12CD")})
	s.Require().NoError(err)
	s.True(output.Created)
	s.Equal("AB12CD", output.Room.Code)

	stored, err := s.repo.GetRoom(s.ctx, &GetRoomInput{Code: "AB12CD"})
	s.Require().NoError(err)
	s.Equal(float64(20580), stored.TotalMoney)
}

func (s *redisRepositoryTestSuite) TestEnsureRoom_ReturnsExistingWhenPresent() {
	_, err := s.repo.EnsureRoom(s.ctx, &EnsureRoomInput{Room: s.newRoom("AB12CD")})
	s.Require().NoError(err)

	second := s.newRoom("AB12CD")
	second.TotalMoney = 999

	output, err := s.repo.EnsureRoom(s.ctx, &EnsureRoomInput{Room: second})
	s.Require().NoError(err)
	s.False(output.Created)

	// The stored record wins over the passed one
	s.Equal(float64(20580), output.Room.TotalMoney)
}

func (s *redisRepositoryTestSuite) TestGetRoom_NotFound() {
	room, err := s.repo.GetRoom(s.ctx, &GetRoomInput{Code: "NOSUCH"})
	s.ErrorIs(err, ErrRoomNotFound)
	s.Nil(room)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_ListsPlayersInSlotOrder() {
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode: "AB12CD",
			SavePlayers: []*models.Player{
				{Name: "carol", Balance: 1500, Slot: 2},
				{Name: "alice", Balance: 1500, Slot: 0},
				{Name: "bob", Balance: 1500, Slot: 1},
			},
		},
	})
	s.Require().NoError(err)

	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Players, 3)
	s.Equal("alice", output.Players[0].Name)
	s.Equal("bob", output.Players[1].Name)
	s.Equal("carol", output.Players[2].Name)
	s.Equal("AB12CD", output.Players[0].RoomCode)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_OverwritesPlayerSlot() {
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:    "AB12CD",
			SavePlayers: []*models.Player{{Name: "alice", Balance: 1500, Slot: 0}},
		},
	})
	s.Require().NoError(err)

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:    "AB12CD",
			SavePlayers: []*models.Player{{Name: "alice", Balance: 1600, Slot: 0}},
		},
	})
	s.Require().NoError(err)

	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Players, 1)
	s.Equal(float64(1600), output.Players[0].Balance)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_AssignsSequentialTransactionIDs() {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &models.Transaction{Timestamp: ts, From: "alice", To: "bob", Amount: 50}
	second := &models.Transaction{Timestamp: ts, From: "bob", To: "alice", Amount: 25}

	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:           "AB12CD",
			AppendTransactions: []*models.Transaction{first, second},
		},
	})
	s.Require().NoError(err)

	// IDs land on the passed records
	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)

	third := &models.Transaction{Timestamp: ts, From: models.BankLabel, To: "alice", Amount: 100}
	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:           "AB12CD",
			AppendTransactions: []*models.Transaction{third},
		},
	})
	s.Require().NoError(err)
	s.Equal(int64(3), third.ID)

	output, err := s.repo.ListTransactions(s.ctx, &ListTransactionsInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Transactions, 3)
	s.Equal(int64(1), output.Transactions[0].ID)
	s.Equal(int64(2), output.Transactions[1].ID)
	s.Equal(int64(3), output.Transactions[2].ID)
	s.Equal("AB12CD", output.Transactions[2].RoomCode)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_AddsAndRemovesDebts() {
	first := &models.Debt{From: "alice", To: "bob", Amount: 200, Note: "rent"}
	second := &models.Debt{From: "bob", To: "carol", Amount: 75}

	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode: "AB12CD",
			AddDebts: []*models.Debt{first, second},
		},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:      "AB12CD",
			RemoveDebtIDs: []int64{first.ID},
		},
	})
	s.Require().NoError(err)

	output, err := s.repo.ListDebts(s.ctx, &ListDebtsInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Debts, 1)
	s.Equal(second.ID, output.Debts[0].ID)

	_, err = s.repo.GetDebt(s.ctx, &GetDebtInput{RoomCode: "AB12CD", DebtID: first.ID})
	s.ErrorIs(err, ErrDebtNotFound)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_RemoveMissingDebtFailsWholeCommit() {
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:    "AB12CD",
			SavePlayers: []*models.Player{{Name: "alice", Balance: 1500, Slot: 0}},
		},
	})
	s.Require().NoError(err)

	// Removing a debt that does not exist fails the commit, and the
	// balance write queued alongside it must not land.
	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:      "AB12CD",
			SavePlayers:   []*models.Player{{Name: "alice", Balance: 9999, Slot: 0}},
			RemoveDebtIDs: []int64{42},
		},
	})
	s.ErrorIs(err, ErrDebtNotFound)

	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Players, 1)
	s.Equal(float64(1500), output.Players[0].Balance)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_ResetPlayersClearsRoster() {
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode: "AB12CD",
			SavePlayers: []*models.Player{
				{Name: "alice", Balance: 1500, Slot: 0},
				{Name: "bob", Balance: 1500, Slot: 1},
				{Name: "carol", Balance: 1500, Slot: 2},
			},
		},
	})
	s.Require().NoError(err)

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:     "AB12CD",
			ResetPlayers: true,
			SavePlayers:  []*models.Player{{Name: "", Balance: 1500, Slot: 0}},
		},
	})
	s.Require().NoError(err)

	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Require().Len(output.Players, 1)
	s.Equal(0, output.Players[0].Slot)
	s.Equal("", output.Players[0].Name)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_ResetPlayersToEmpty() {
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:    "AB12CD",
			SavePlayers: []*models.Player{{Name: "alice", Balance: 1500, Slot: 0}},
		},
	})
	s.Require().NoError(err)

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:     "AB12CD",
			ResetPlayers: true,
		},
	})
	s.Require().NoError(err)

	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "AB12CD"})
	s.Require().NoError(err)
	s.Empty(output.Players)
}

func (s *redisRepositoryTestSuite) TestCommitRoomMutation_SavesRoomRecord() {
	room := s.newRoom("AB12CD")
	_, err := s.repo.EnsureRoom(s.ctx, &EnsureRoomInput{Room: room})
	s.Require().NoError(err)

	room.TotalMoney = 20480
	room.Money = []json.RawMessage{json.RawMessage(`{"500":2}`)}

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode: "AB12CD",
			SaveRoom: room,
		},
	})
	s.Require().NoError(err)

	stored, err := s.repo.GetRoom(s.ctx, &GetRoomInput{Code: "AB12CD"})
	s.Require().NoError(err)
	s.Equal(float64(20480), stored.TotalMoney)
	s.Require().Len(stored.Money, 1)
	s.JSONEq(`{"500":2}`, string(stored.Money[0]))
}

func (s *redisRepositoryTestSuite) TestListPlayers_EmptyRoom() {
	output, err := s.repo.ListPlayers(s.ctx, &ListPlayersInput{RoomCode: "NOSUCH"})
	s.Require().NoError(err)
	s.NotNil(output.Players)
	s.Empty(output.Players)
}

func (s *redisRepositoryTestSuite) TestGetDebt_ReturnsStoredRecord() {
	debt := &models.Debt{From: "alice", To: "bob", Amount: 200, Note: "rent"}
	err := s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode: "AB12CD",
			AddDebts: []*models.Debt{debt},
		},
	})
	s.Require().NoError(err)

	stored, err := s.repo.GetDebt(s.ctx, &GetDebtInput{RoomCode: "AB12CD", DebtID: debt.ID})
	s.Require().NoError(err)
	s.Equal("alice", stored.From)
	s.Equal("bob", stored.To)
	s.Equal(float64(200), stored.Amount)
	s.Equal("AB12CD", stored.RoomCode)
}

func (s *redisRepositoryTestSuite) TestDeleteRoom_CascadesToOwnedRecords() {
	_, err := s.repo.EnsureRoom(s.ctx, &EnsureRoomInput{Room: s.newRoom("AB12CD")})
	s.Require().NoError(err)

	err = s.repo.CommitRoomMutation(s.ctx, &CommitRoomMutationInput{
		Mutation: &RoomMutation{
			RoomCode:    "AB12CD",
			SavePlayers: []*models.Player{{Name: "alice", Balance: 1500, Slot: 0}},
			AppendTransactions: []*models.Transaction{
				{Timestamp: time.Now().UTC(), From: models.BankLabel, To: "alice", Amount: 100},
			},
			AddDebts: []*models.Debt{{From: "alice", To: "bob", Amount: 50}},
		},
	})
	s.Require().NoError(err)

	err = s.repo.DeleteRoom(s.ctx, &DeleteRoomInput{Code: "AB12CD"})
	s.Require().NoError(err)

	s.Empty(s.miniRedis.Keys())

	_, err = s.repo.GetRoom(s.ctx, &GetRoomInput{Code: "AB12CD"})
	s.ErrorIs(err, ErrRoomNotFound)
}

func (s *redisRepositoryTestSuite) TestDeleteRoom_NotFound() {
	err := s.repo.DeleteRoom(s.ctx, &DeleteRoomInput{Code: "NOSUCH"})
	s.ErrorIs(err, ErrRoomNotFound)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(redisRepositoryTestSuite))
}
