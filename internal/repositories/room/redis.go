package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/boardbank/boardbank/internal/models"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix = "room:"

	playerKeySegment  = ":player:"
	playerIndexSuffix = ":players"

	txKeySegment  = ":tx:"
	txIndexSuffix = ":txs"
	txSeqSuffix   = ":tx_seq"

	debtKeySegment  = ":debt:"
	debtIndexSuffix = ":debts"
	debtSeqSuffix   = ":debt_seq"
)

var (
	// ErrRoomNotFound is returned when a room is not found
	ErrRoomNotFound = errors.New("room not found")

	// ErrDebtNotFound is returned when a debt is not found
	ErrDebtNotFound = errors.New("debt not found")
)

// Config holds configuration for the Redis room repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed room repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func roomKey(code string) string {
	return roomKeyPrefix + code
}

func playerKey(code string, slot int) string {
	return roomKeyPrefix + code + playerKeySegment + strconv.Itoa(slot)
}

func playerIndexKey(code string) string {
	return roomKeyPrefix + code + playerIndexSuffix
}

func txKey(code string, id int64) string {
	return roomKeyPrefix + code + txKeySegment + strconv.FormatInt(id, 10)
}

func txIndexKey(code string) string {
	return roomKeyPrefix + code + txIndexSuffix
}

func txSeqKey(code string) string {
	return roomKeyPrefix + code + txSeqSuffix
}

func debtKey(code string, id int64) string {
	return roomKeyPrefix + code + debtKeySegment + strconv.FormatInt(id, 10)
}

func debtIndexKey(code string) string {
	return roomKeyPrefix + code + debtIndexSuffix
}

func debtSeqKey(code string) string {
	return roomKeyPrefix + code + debtSeqSuffix
}

// EnsureRoom returns the stored room for the input record's code, creating
// it from the record when the code is unclaimed
func (r *redisRepository) EnsureRoom(ctx context.Context, input *EnsureRoomInput) (*EnsureRoomOutput, error) {
	if input == nil || input.Room == nil || input.Room.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	roomJSON, err := json.Marshal(input.Room)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room: %w", err)
	}

	// SETNX decides the race: exactly one concurrent caller creates the
	// room, everyone else reads the record that won.
	created, err := r.client.SetNX(ctx, roomKey(input.Room.Code), roomJSON, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if created {
		return &EnsureRoomOutput{
			Room:    input.Room,
			Created: true,
		}, nil
	}

	existing, err := r.GetRoom(ctx, &GetRoomInput{Code: input.Room.Code})
	if err != nil {
		return nil, fmt.Errorf("failed to read existing room: %w", err)
	}

	return &EnsureRoomOutput{
		Room:    existing,
		Created: false,
	}, nil
}

// GetRoom retrieves a room record by code from Redis
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	roomJSON, err := r.client.Get(ctx, roomKey(input.Code)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room models.Room
	if err := json.Unmarshal([]byte(roomJSON), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// ListPlayers retrieves all players in a room ordered by slot ascending
func (r *redisRepository) ListPlayers(ctx context.Context, input *ListPlayersInput) (*ListPlayersOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	// Slots come back ordered because the index scores by slot
	slots, err := r.client.ZRange(ctx, playerIndexKey(input.RoomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player slots: %w", err)
	}

	if len(slots) == 0 {
		return &ListPlayersOutput{Players: []*models.Player{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(slots))
	for _, slot := range slots {
		cmds = append(cmds, pipe.Get(ctx, roomKeyPrefix+input.RoomCode+playerKeySegment+slot))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get player records: %w", err)
	}

	players := make([]*models.Player, 0, len(slots))
	for i, cmd := range cmds {
		playerJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Record removed between reading the index and the fetch
				continue
			}
			return nil, fmt.Errorf("failed to get player at slot %s: %w", slots[i], err)
		}

		var player models.Player
		if err := json.Unmarshal([]byte(playerJSON), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player at slot %s: %w", slots[i], err)
		}
		player.RoomCode = input.RoomCode

		players = append(players, &player)
	}

	return &ListPlayersOutput{Players: players}, nil
}

// ListTransactions retrieves a room's transaction log in append order
func (r *redisRepository) ListTransactions(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	ids, err := r.client.ZRange(ctx, txIndexKey(input.RoomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ids: %w", err)
	}

	if len(ids) == 0 {
		return &ListTransactionsOutput{Transactions: []*models.Transaction{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.Get(ctx, roomKeyPrefix+input.RoomCode+txKeySegment+id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get transaction records: %w", err)
	}

	transactions := make([]*models.Transaction, 0, len(ids))
	for i, cmd := range cmds {
		txJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, fmt.Errorf("failed to get transaction %s: %w", ids[i], err)
		}

		var tx models.Transaction
		if err := json.Unmarshal([]byte(txJSON), &tx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction %s: %w", ids[i], err)
		}
		tx.RoomCode = input.RoomCode

		transactions = append(transactions, &tx)
	}

	return &ListTransactionsOutput{Transactions: transactions}, nil
}

// ListDebts retrieves a room's open debts ordered by id ascending
func (r *redisRepository) ListDebts(ctx context.Context, input *ListDebtsInput) (*ListDebtsOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	ids, err := r.client.ZRange(ctx, debtIndexKey(input.RoomCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get debt ids: %w", err)
	}

	if len(ids) == 0 {
		return &ListDebtsOutput{Debts: []*models.Debt{}}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, pipe.Get(ctx, roomKeyPrefix+input.RoomCode+debtKeySegment+id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get debt records: %w", err)
	}

	debts := make([]*models.Debt, 0, len(ids))
	for i, cmd := range cmds {
		debtJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Settled between reading the index and the fetch
				continue
			}
			return nil, fmt.Errorf("failed to get debt %s: %w", ids[i], err)
		}

		var debt models.Debt
		if err := json.Unmarshal([]byte(debtJSON), &debt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal debt %s: %w", ids[i], err)
		}
		debt.RoomCode = input.RoomCode

		debts = append(debts, &debt)
	}

	return &ListDebtsOutput{Debts: debts}, nil
}

// GetDebt retrieves a single open debt by id from Redis
func (r *redisRepository) GetDebt(ctx context.Context, input *GetDebtInput) (*models.Debt, error) {
	if input == nil || input.RoomCode == "" {
		return nil, errors.New("input and room code cannot be empty")
	}

	debtJSON, err := r.client.Get(ctx, debtKey(input.RoomCode, input.DebtID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDebtNotFound
		}
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}

	var debt models.Debt
	if err := json.Unmarshal([]byte(debtJSON), &debt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal debt: %w", err)
	}
	debt.RoomCode = input.RoomCode

	return &debt, nil
}

// CommitRoomMutation atomically applies every write in the mutation. All
// writes are queued into a single MULTI/EXEC, so either the whole mutation
// lands or none of it does. Transaction and debt ids are taken from
// per-room counters and written back onto the passed records.
func (r *redisRepository) CommitRoomMutation(ctx context.Context, input *CommitRoomMutationInput) error {
	if input == nil || input.Mutation == nil || input.Mutation.RoomCode == "" {
		return errors.New("input and room code cannot be empty")
	}

	m := input.Mutation
	code := m.RoomCode

	// Verify removals up front so settling an already-settled debt fails
	// the commit before anything is written.
	for _, id := range m.RemoveDebtIDs {
		exists, err := r.client.Exists(ctx, debtKey(code, id)).Result()
		if err != nil {
			return fmt.Errorf("failed to check debt %d: %w", id, err)
		}
		if exists == 0 {
			return ErrDebtNotFound
		}
	}

	// Draw ids before queuing writes. A failed EXEC burns the drawn ids,
	// which keeps them unique exactly like a database sequence would.
	for _, tx := range m.AppendTransactions {
		id, err := r.client.Incr(ctx, txSeqKey(code)).Result()
		if err != nil {
			return fmt.Errorf("failed to assign transaction id: %w", err)
		}
		tx.ID = id
		tx.RoomCode = code
	}

	for _, debt := range m.AddDebts {
		id, err := r.client.Incr(ctx, debtSeqKey(code)).Result()
		if err != nil {
			return fmt.Errorf("failed to assign debt id: %w", err)
		}
		debt.ID = id
		debt.RoomCode = code
	}

	// A reset needs the slots that exist right now
	var resetSlots []string
	if m.ResetPlayers {
		slots, err := r.client.ZRange(ctx, playerIndexKey(code), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to get player slots for reset: %w", err)
		}
		resetSlots = slots
	}

	pipe := r.client.TxPipeline()

	if m.SaveRoom != nil {
		roomJSON, err := json.Marshal(m.SaveRoom)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}
		pipe.Set(ctx, roomKey(code), roomJSON, 0)
	}

	if m.ResetPlayers {
		for _, slot := range resetSlots {
			pipe.Del(ctx, roomKeyPrefix+code+playerKeySegment+slot)
		}
		pipe.Del(ctx, playerIndexKey(code))
	}

	for _, player := range m.SavePlayers {
		player.RoomCode = code
		playerJSON, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("failed to marshal player: %w", err)
		}
		pipe.Set(ctx, playerKey(code, player.Slot), playerJSON, 0)
		pipe.ZAdd(ctx, playerIndexKey(code), redis.Z{
			Score:  float64(player.Slot),
			Member: strconv.Itoa(player.Slot),
		})
	}

	for _, tx := range m.AppendTransactions {
		txJSON, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		pipe.Set(ctx, txKey(code, tx.ID), txJSON, 0)
		pipe.ZAdd(ctx, txIndexKey(code), redis.Z{
			Score:  float64(tx.ID),
			Member: strconv.FormatInt(tx.ID, 10),
		})
	}

	for _, debt := range m.AddDebts {
		debtJSON, err := json.Marshal(debt)
		if err != nil {
			return fmt.Errorf("failed to marshal debt: %w", err)
		}
		pipe.Set(ctx, debtKey(code, debt.ID), debtJSON, 0)
		pipe.ZAdd(ctx, debtIndexKey(code), redis.Z{
			Score:  float64(debt.ID),
			Member: strconv.FormatInt(debt.ID, 10),
		})
	}

	for _, id := range m.RemoveDebtIDs {
		pipe.Del(ctx, debtKey(code, id))
		pipe.ZRem(ctx, debtIndexKey(code), strconv.FormatInt(id, 10))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit room mutation: %w", err)
	}

	return nil
}

// DeleteRoom removes a room and cascades to every record it owns
func (r *redisRepository) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.Code == "" {
		return errors.New("input and room code cannot be empty")
	}

	code := input.Code

	exists, err := r.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}
	if exists == 0 {
		return ErrRoomNotFound
	}

	slots, err := r.client.ZRange(ctx, playerIndexKey(code), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get player slots: %w", err)
	}

	txIDs, err := r.client.ZRange(ctx, txIndexKey(code), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get transaction ids: %w", err)
	}

	debtIDs, err := r.client.ZRange(ctx, debtIndexKey(code), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get debt ids: %w", err)
	}

	pipe := r.client.TxPipeline()

	for _, slot := range slots {
		pipe.Del(ctx, roomKeyPrefix+code+playerKeySegment+slot)
	}
	for _, id := range txIDs {
		pipe.Del(ctx, roomKeyPrefix+code+txKeySegment+id)
	}
	for _, id := range debtIDs {
		pipe.Del(ctx, roomKeyPrefix+code+debtKeySegment+id)
	}

	pipe.Del(ctx, playerIndexKey(code))
	pipe.Del(ctx, txIndexKey(code))
	pipe.Del(ctx, debtIndexKey(code))
	pipe.Del(ctx, txSeqKey(code))
	pipe.Del(ctx, debtSeqKey(code))
	pipe.Del(ctx, roomKey(code))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}
