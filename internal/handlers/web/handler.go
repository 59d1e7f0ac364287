package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/boardbank/boardbank/internal/models"
	"github.com/boardbank/boardbank/internal/services/bank"
)

// RoleHeader carries the caller's role. There is no session layer; the
// client states its role and the server takes its word for it, exactly
// as far as the admin flag needs to be trusted at a game table.
const RoleHeader = "X-Player-Role"

// Handler serves the JSON API. It holds no state of its own; every
// request is one bank service call.
type Handler struct {
	bankService bank.Service
}

// Config holds the configuration for the web handler
type Config struct {
	// BankService executes the room operations
	BankService bank.Service
}

// New creates a new web handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.BankService == nil {
		return nil, errors.New("bank service cannot be nil")
	}

	return &Handler{
		bankService: cfg.BankService,
	}, nil
}

// Routes returns the full API wrapped in logging and CORS middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/rooms", h.createRoom)
	mux.HandleFunc("POST /api/rooms/{code}/join", h.joinRoom)
	mux.HandleFunc("POST /api/rooms/{code}/init", h.initializeRoom)
	mux.HandleFunc("GET /api/rooms/{code}", h.getRoom)
	mux.HandleFunc("GET /api/rooms/{code}/players", h.listPlayers)
	mux.HandleFunc("PUT /api/rooms/{code}/players/{name}", h.updatePlayer)
	mux.HandleFunc("POST /api/rooms/{code}/bank", h.updateInventory)
	mux.HandleFunc("POST /api/rooms/{code}/bank-transfer", h.bankTransfer)
	mux.HandleFunc("POST /api/rooms/{code}/debts", h.addDebt)
	mux.HandleFunc("POST /api/rooms/{code}/debts/settle", h.settleDebt)
	mux.HandleFunc("POST /api/rooms/{code}/transactions", h.addTransaction)
	mux.HandleFunc("GET /healthz", h.health)

	return Logging(CORS(mux))
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.CreateRoom(r.Context(), &bank.CreateRoomInput{
		AdminName: req.AdminName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createRoomResponse{
		RoomCode: output.Snapshot.Code,
		Role:     output.Role,
		Room:     output.Snapshot,
	})
}

func (h *Handler) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.JoinRoom(r.Context(), &bank.JoinRoomInput{
		RoomCode:   roomCode(r),
		PlayerName: req.PlayerName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, joinRoomResponse{
		RoomCode: output.Snapshot.Code,
		Role:     output.Role,
		Player:   output.Player,
		Room:     output.Snapshot,
	})
}

func (h *Handler) initializeRoom(w http.ResponseWriter, r *http.Request) {
	var req initializeRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Absent means the default table size; zero means zero seats
	playerCount := bank.DefaultPlayerCount
	if req.PlayerCount != nil {
		playerCount = *req.PlayerCount
	}

	output, err := h.bankService.InitializeRoom(r.Context(), &bank.InitializeRoomInput{
		RoomCode:    roomCode(r),
		AdminName:   req.AdminName,
		PlayerCount: playerCount,
		Role:        callerRole(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{
		Success: true,
		Room:    output.Snapshot,
	})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	output, err := h.bankService.GetRoomSnapshot(r.Context(), &bank.GetRoomSnapshotInput{
		RoomCode: roomCode(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// ?player=NAME adds that player's open-debt totals to the snapshot
	if name := r.URL.Query().Get("player"); name != "" {
		owes, owed := output.Snapshot.DebtTotals(name)
		writeJSON(w, http.StatusOK, snapshotWithTotals{
			Snapshot: output.Snapshot,
			Owes:     owes,
			Owed:     owed,
		})
		return
	}

	writeJSON(w, http.StatusOK, output.Snapshot)
}

func (h *Handler) listPlayers(w http.ResponseWriter, r *http.Request) {
	output, err := h.bankService.ListPlayers(r.Context(), &bank.ListPlayersInput{
		RoomCode: roomCode(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output.Players)
}

func (h *Handler) updatePlayer(w http.ResponseWriter, r *http.Request) {
	var req updatePlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.UpdatePlayer(r.Context(), &bank.UpdatePlayerInput{
		RoomCode: roomCode(r),
		Name:     r.PathValue("name"),
		Balance:  req.Balance,
		NewName:  req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playerResponse{
		Success: true,
		Player:  output.Player,
	})
}

func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	var req updateInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.UpdateInventory(r.Context(), &bank.UpdateInventoryInput{
		RoomCode:   roomCode(r),
		Role:       callerRole(r),
		Money:      req.Money,
		Properties: req.Properties,
		Cards:      req.Cards,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{
		Success: true,
		Room:    output.Snapshot,
	})
}

func (h *Handler) bankTransfer(w http.ResponseWriter, r *http.Request) {
	var req bankTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	direction := bank.DirectionFromBank
	if req.Direction != "" {
		direction = bank.TransferDirection(req.Direction)
	}

	output, err := h.bankService.BankTransfer(r.Context(), &bank.BankTransferInput{
		RoomCode:   roomCode(r),
		PlayerName: req.Player,
		Amount:     req.Amount,
		Direction:  direction,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{
		Success: true,
		Room:    output.Snapshot,
	})
}

func (h *Handler) addDebt(w http.ResponseWriter, r *http.Request) {
	var req addDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.AddDebt(r.Context(), &bank.AddDebtInput{
		RoomCode: roomCode(r),
		From:     req.From,
		To:       req.To,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, debtsResponse{
		Success: true,
		Debts:   output.Debts,
	})
}

func (h *Handler) settleDebt(w http.ResponseWriter, r *http.Request) {
	var req settleDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.SettleDebt(r.Context(), &bank.SettleDebtInput{
		RoomCode:  roomCode(r),
		DebtID:    req.ID,
		DebtIndex: req.Index,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{
		Success: true,
		Room:    output.Snapshot,
	})
}

func (h *Handler) addTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	output, err := h.bankService.AddTransaction(r.Context(), &bank.AddTransactionInput{
		RoomCode: roomCode(r),
		From:     req.From,
		To:       req.To,
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionsResponse{
		Success:      true,
		Transactions: output.Transactions,
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// roomCode reads the room code path segment, normalized to uppercase the
// way codes are displayed
func roomCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
}

// callerRole reads the role header; anything but admin is a player
func callerRole(r *http.Request) models.Role {
	if r.Header.Get(RoleHeader) == string(models.RoleAdmin) {
		return models.RoleAdmin
	}
	return models.RolePlayer
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bank.ErrInvalidRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses. A missing debt is a
// bad request, not a 404: the id was valid once and the usual cause is a
// lost settle race.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, bank.ErrInvalidRequest), errors.Is(err, bank.ErrDebtNotFound):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, bank.ErrRoomNotFound), errors.Is(err, bank.ErrPlayerNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, bank.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}
