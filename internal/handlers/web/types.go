package web

import (
	"encoding/json"

	"github.com/boardbank/boardbank/internal/models"
)

type createRoomRequest struct {
	AdminName string `json:"admin_name"`
}

type createRoomResponse struct {
	RoomCode string           `json:"room_code"`
	Role     models.Role      `json:"role"`
	Room     *models.Snapshot `json:"room"`
}

type joinRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type joinRoomResponse struct {
	RoomCode string           `json:"room_code"`
	Role     models.Role      `json:"role"`
	Player   *models.Player   `json:"player"`
	Room     *models.Snapshot `json:"room"`
}

// initializeRoomRequest rebuilds a room's seats. PlayerCount is a pointer
// so that an absent field (default table size) and an explicit zero
// (empty table) stay distinguishable.
type initializeRoomRequest struct {
	AdminName   string `json:"admin_name"`
	PlayerCount *int   `json:"player_count"`
}

type updatePlayerRequest struct {
	Balance *float64 `json:"balance"`
	Name    *string  `json:"name"`
}

type updateInventoryRequest struct {
	Money      []json.RawMessage `json:"money"`
	Properties []json.RawMessage `json:"properties"`
	Cards      []json.RawMessage `json:"cards"`
}

type bankTransferRequest struct {
	Player    string  `json:"player"`
	Amount    float64 `json:"amount"`
	Direction string  `json:"direction"`
	Note      string  `json:"note"`
}

type addDebtRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// settleDebtRequest selects the debt to settle; id wins over idx
type settleDebtRequest struct {
	ID    *int64 `json:"id"`
	Index *int   `json:"idx"`
}

type addTransactionRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

type roomResponse struct {
	Success bool             `json:"success"`
	Room    *models.Snapshot `json:"room"`
}

type playerResponse struct {
	Success bool           `json:"success"`
	Player  *models.Player `json:"player"`
}

type debtsResponse struct {
	Success bool           `json:"success"`
	Debts   []*models.Debt `json:"debts"`
}

type transactionsResponse struct {
	Success      bool                  `json:"success"`
	Transactions []*models.Transaction `json:"transactions"`
}

// snapshotWithTotals is a snapshot with one player's open-debt totals
// spliced in
type snapshotWithTotals struct {
	*models.Snapshot
	Owes float64 `json:"owes"`
	Owed float64 `json:"owed"`
}

type errorResponse struct {
	Error string `json:"error"`
}
