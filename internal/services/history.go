package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hatstore-backend/internal/config"
	"hatstore-backend/internal/models"
)

// HistoryService keeps a bounded record of recent spins in Redis: one JSON
// record per spin plus sorted-set indexes, global and per user. The service
// is optional; when Redis is not configured the rest of the system runs
// without it and history reads come back empty.
type HistoryService struct {
	client *redis.Client
}

func NewHistoryService(cfg *config.Config) (*HistoryService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &HistoryService{client: client}, nil
}

func (s *HistoryService) Close() error {
	return s.client.Close()
}

// HistoryEntry is one stored spin.
type HistoryEntry struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"ts"`
	UserID    string   `json:"userId"`
	BetAmount int64    `json:"betAmount"`
	Symbols   []string `json:"symbols"`
	DiceValue int      `json:"diceValue"`
	IsWin     bool     `json:"isWin"`
	IsJackpot bool     `json:"isJackpot"`
}

// RecordSpin appends a finished spin to the history indexes.
func (s *HistoryService) RecordSpin(ctx context.Context, snapshot models.SpinSnapshot) error {
	entry := HistoryEntry{
		ID:        models.GenerateSpinID(),
		Timestamp: snapshot.Timestamp,
		UserID:    snapshot.UserID,
		BetAmount: snapshot.BetAmount,
		Symbols:   snapshot.Result.Symbols,
		DiceValue: snapshot.Result.DiceValue,
		IsWin:     snapshot.Result.IsWin,
		IsJackpot: snapshot.Result.IsJackpot,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal spin record: %v", err)
	}

	recordKey := fmt.Sprintf(KeySpinRecord, entry.ID)
	if err := s.client.Set(ctx, recordKey, data, TTLSpinRecord).Err(); err != nil {
		return fmt.Errorf("failed to save spin record: %v", err)
	}

	score := float64(time.Now().UnixNano())

	if err := s.client.ZAdd(ctx, KeyRecentSpins, redis.Z{Score: score, Member: entry.ID}).Err(); err != nil {
		return fmt.Errorf("failed to index spin: %v", err)
	}
	s.client.ZRemRangeByRank(ctx, KeyRecentSpins, 0, -int64(HistoryKeep)-1)

	userKey := fmt.Sprintf(KeyUserSpins, entry.UserID)
	if err := s.client.ZAdd(ctx, userKey, redis.Z{Score: score, Member: entry.ID}).Err(); err != nil {
		return fmt.Errorf("failed to index user spin: %v", err)
	}
	s.client.ZRemRangeByRank(ctx, userKey, 0, -int64(HistoryKeep)-1)
	s.client.Expire(ctx, userKey, TTLSpinRecord)

	return nil
}

// GetRecentSpins returns the newest spins across all users.
func (s *HistoryService) GetRecentSpins(ctx context.Context, limit int64) ([]*HistoryEntry, error) {
	return s.fetch(ctx, KeyRecentSpins, limit)
}

// GetUserSpins returns the newest spins for one user.
func (s *HistoryService) GetUserSpins(ctx context.Context, userID string, limit int64) ([]*HistoryEntry, error) {
	return s.fetch(ctx, fmt.Sprintf(KeyUserSpins, userID), limit)
}

func (s *HistoryService) fetch(ctx context.Context, indexKey string, limit int64) ([]*HistoryEntry, error) {
	if limit <= 0 || limit > HistoryKeep {
		limit = 10
	}

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get spin IDs: %v", err)
	}

	entries := make([]*HistoryEntry, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeySpinRecord, id)).Result()
		if err != nil {
			continue
		}

		var entry HistoryEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}
