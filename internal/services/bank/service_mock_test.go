package bank

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/boardbank/boardbank/internal/common/clock/mocks"
	codeMocks "github.com/boardbank/boardbank/internal/common/roomcode/mocks"
	"github.com/boardbank/boardbank/internal/models"
	roomRepo "github.com/boardbank/boardbank/internal/repositories/room"
	roomMocks "github.com/boardbank/boardbank/internal/repositories/room/mocks"
)

// The mock suite pins down what the service writes and how repository
// failures surface. Behavior against a live store is covered by the
// miniredis suite in service_test.go.
type bankServiceMockTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockRepo      *roomMocks.MockRepository
	mockClock     *clockMocks.MockClock
	mockGenerator *codeMocks.MockGenerator
	service       *service
	ctx           context.Context

	// Test data
	testTime  time.Time
	testRoom  *models.Room
	testAlice *models.Player
	testBob   *models.Player
	testDebt  *models.Debt
}

func (s *bankServiceMockTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = roomMocks.NewMockRepository(s.ctrl)
	s.mockClock = clockMocks.NewMockClock(s.ctrl)
	s.mockGenerator = codeMocks.NewMockGenerator(s.ctrl)

	s.ctx = context.Background()

	s.testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	// Fixtures are rebuilt per test because the service mutates the
	// records the repository hands it.
	s.testRoom = &models.Room{
		Code:       "AB12CD",
		TotalMoney: DefaultBankTotal,
		Money:      []json.RawMessage{},
		Properties: []json.RawMessage{},
		Cards:      []json.RawMessage{},
		CreatedAt:  s.testTime,
	}

	s.testAlice = &models.Player{
		RoomCode: "AB12CD",
		Name:     "alice",
		Balance:  DefaultStartingBalance,
		Slot:     0,
	}

	s.testBob = &models.Player{
		RoomCode: "AB12CD",
		Name:     "bob",
		Balance:  DefaultStartingBalance,
		Slot:     1,
	}

	s.testDebt = &models.Debt{
		ID:       1,
		RoomCode: "AB12CD",
		From:     "bob",
		To:       "alice",
		Amount:   200,
		Note:     "rent",
	}

	svc, err := New(&Config{
		RoomRepo:      s.mockRepo,
		Clock:         s.mockClock,
		CodeGenerator: s.mockGenerator,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *bankServiceMockTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *bankServiceMockTestSuite) listPlayersOutput() *roomRepo.ListPlayersOutput {
	return &roomRepo.ListPlayersOutput{
		Players: []*models.Player{s.testAlice, s.testBob},
	}
}

func (s *bankServiceMockTestSuite) TestCreateRoom_SeatWriteFailurePropagates() {
	expectedError := errors.New("redis unavailable")

	s.mockGenerator.EXPECT().NewCode().Return("AB12CD")

	s.mockRepo.EXPECT().
		EnsureRoom(gomock.Any(), &roomRepo.EnsureRoomInput{Room: s.testRoom}).
		Return(&roomRepo.EnsureRoomOutput{Room: s.testRoom, Created: true}, nil)

	// The whole roster rebuild is one commit: reset plus four fresh seats
	// with the admin in slot 0.
	s.mockRepo.EXPECT().
		CommitRoomMutation(gomock.Any(), &roomRepo.CommitRoomMutationInput{
			Mutation: &roomRepo.RoomMutation{
				RoomCode:     "AB12CD",
				ResetPlayers: true,
				SavePlayers: []*models.Player{
					{Name: "alice", Balance: DefaultStartingBalance, Slot: 0},
					{Name: "", Balance: DefaultStartingBalance, Slot: 1},
					{Name: "", Balance: DefaultStartingBalance, Slot: 2},
					{Name: "", Balance: DefaultStartingBalance, Slot: 3},
				},
			},
		}).
		Return(expectedError)

	output, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{AdminName: "alice"})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestGetRoomSnapshot_EnsureFailurePropagates() {
	expectedError := errors.New("redis unavailable")

	s.mockRepo.EXPECT().
		EnsureRoom(gomock.Any(), &roomRepo.EnsureRoomInput{Room: s.testRoom}).
		Return(nil, expectedError)

	output, err := s.service.GetRoomSnapshot(s.ctx, &GetRoomSnapshotInput{RoomCode: "AB12CD"})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestUpdatePlayer_ListFailurePropagates() {
	expectedError := errors.New("redis unavailable")

	s.mockRepo.EXPECT().
		ListPlayers(gomock.Any(), &roomRepo.ListPlayersInput{RoomCode: "AB12CD"}).
		Return(nil, expectedError)

	balance := 2000.0
	output, err := s.service.UpdatePlayer(s.ctx, &UpdatePlayerInput{
		RoomCode: "AB12CD",
		Name:     "alice",
		Balance:  &balance,
	})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestSettleDebt_WritesOneCommit() {
	expectedError := errors.New("redis unavailable")

	s.mockRepo.EXPECT().
		GetDebt(gomock.Any(), &roomRepo.GetDebtInput{RoomCode: "AB12CD", DebtID: 1}).
		Return(s.testDebt, nil)

	s.mockRepo.EXPECT().
		ListPlayers(gomock.Any(), &roomRepo.ListPlayersInput{RoomCode: "AB12CD"}).
		Return(s.listPlayersOutput(), nil)

	// Both balance moves, the settlement transaction, and the debt
	// removal ride in a single mutation; a failure leaves no partial
	// settlement behind.
	s.mockRepo.EXPECT().
		CommitRoomMutation(gomock.Any(), &roomRepo.CommitRoomMutationInput{
			Mutation: &roomRepo.RoomMutation{
				RoomCode: "AB12CD",
				SavePlayers: []*models.Player{
					{RoomCode: "AB12CD", Name: "bob", Balance: DefaultStartingBalance - 200, Slot: 1},
					{RoomCode: "AB12CD", Name: "alice", Balance: DefaultStartingBalance + 200, Slot: 0},
				},
				AppendTransactions: []*models.Transaction{
					{Timestamp: s.testTime, From: "bob", To: "alice", Amount: 200, Note: "settle: rent"},
				},
				RemoveDebtIDs: []int64{1},
			},
		}).
		Return(expectedError)

	debtID := int64(1)
	output, err := s.service.SettleDebt(s.ctx, &SettleDebtInput{RoomCode: "AB12CD", DebtID: &debtID})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestSettleDebt_RemovedBeforeCommit() {
	// Two processes sharing one Redis can interleave past the in-process
	// lock; the commit-time existence check is the backstop that turns
	// the loser's settle into a clean not-found.
	s.mockRepo.EXPECT().
		GetDebt(gomock.Any(), &roomRepo.GetDebtInput{RoomCode: "AB12CD", DebtID: 1}).
		Return(s.testDebt, nil)

	s.mockRepo.EXPECT().
		ListPlayers(gomock.Any(), &roomRepo.ListPlayersInput{RoomCode: "AB12CD"}).
		Return(s.listPlayersOutput(), nil)

	s.mockRepo.EXPECT().
		CommitRoomMutation(gomock.Any(), gomock.Any()).
		Return(roomRepo.ErrDebtNotFound)

	debtID := int64(1)
	output, err := s.service.SettleDebt(s.ctx, &SettleDebtInput{RoomCode: "AB12CD", DebtID: &debtID})

	s.Require().Error(err)
	s.ErrorIs(err, ErrDebtNotFound)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestBankTransfer_WritesOneCommit() {
	expectedError := errors.New("redis unavailable")

	s.mockRepo.EXPECT().
		GetRoom(gomock.Any(), &roomRepo.GetRoomInput{Code: "AB12CD"}).
		Return(s.testRoom, nil)

	s.mockRepo.EXPECT().
		ListPlayers(gomock.Any(), &roomRepo.ListPlayersInput{RoomCode: "AB12CD"}).
		Return(s.listPlayersOutput(), nil)

	// Bank total, player balance, and the transaction move together
	s.mockRepo.EXPECT().
		CommitRoomMutation(gomock.Any(), &roomRepo.CommitRoomMutationInput{
			Mutation: &roomRepo.RoomMutation{
				RoomCode: "AB12CD",
				SaveRoom: &models.Room{
					Code:       "AB12CD",
					TotalMoney: DefaultBankTotal - 100,
					Money:      []json.RawMessage{},
					Properties: []json.RawMessage{},
					Cards:      []json.RawMessage{},
					CreatedAt:  s.testTime,
				},
				SavePlayers: []*models.Player{
					{RoomCode: "AB12CD", Name: "alice", Balance: DefaultStartingBalance + 100, Slot: 0},
				},
				AppendTransactions: []*models.Transaction{
					{Timestamp: s.testTime, From: models.BankLabel, To: "alice", Amount: 100, Note: "Bank → alice"},
				},
			},
		}).
		Return(expectedError)

	output, err := s.service.BankTransfer(s.ctx, &BankTransferInput{
		RoomCode:   "AB12CD",
		PlayerName: "alice",
		Amount:     100,
		Direction:  DirectionFromBank,
	})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func (s *bankServiceMockTestSuite) TestAddTransaction_LogReadFailurePropagates() {
	expectedError := errors.New("redis unavailable")

	s.mockRepo.EXPECT().
		GetRoom(gomock.Any(), &roomRepo.GetRoomInput{Code: "AB12CD"}).
		Return(s.testRoom, nil)

	s.mockRepo.EXPECT().
		ListPlayers(gomock.Any(), &roomRepo.ListPlayersInput{RoomCode: "AB12CD"}).
		Return(s.listPlayersOutput(), nil)

	s.mockRepo.EXPECT().
		CommitRoomMutation(gomock.Any(), gomock.Any()).
		Return(nil)

	s.mockRepo.EXPECT().
		ListTransactions(gomock.Any(), &roomRepo.ListTransactionsInput{RoomCode: "AB12CD"}).
		Return(nil, expectedError)

	output, err := s.service.AddTransaction(s.ctx, &AddTransactionInput{
		RoomCode: "AB12CD",
		From:     "alice",
		To:       "bob",
		Amount:   75,
	})

	s.Require().Error(err)
	s.ErrorIs(err, expectedError)
	s.Nil(output)
}

func TestBankServiceMockTestSuite(t *testing.T) {
	suite.Run(t, new(bankServiceMockTestSuite))
}
