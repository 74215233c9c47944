package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skyrzilla/Dual-Domain-Cyber-Electronic-Warfare-Defence-Integration/internal/models"
)

const (
	trafficKey       = "traffic:entries"
	attacksActiveKey = "attacks:active"
	attacksHistKey   = "attacks:history"
	alertChannel     = "alerts"

	// entries older than this are trimmed on every write
	trafficRetention = 5 * time.Minute
)

// RedisStore keeps the traffic window in a time-scored sorted set and
// detection results in a hash plus history set.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// AddEntry appends a traffic entry to the window and trims expired ones
func (r *RedisStore) AddEntry(ctx context.Context, entry models.TrafficEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := r.client.ZAdd(ctx, trafficKey, redis.Z{
		Score:  float64(entry.Timestamp.Unix()),
		Member: string(data),
	}).Err(); err != nil {
		return err
	}

	cutoff := time.Now().Add(-trafficRetention).Unix()
	return r.client.ZRemRangeByScore(ctx, trafficKey, "-inf", fmt.Sprintf("%d", cutoff)).Err()
}

// RecentEntries returns entries newer than the given window
func (r *RedisStore) RecentEntries(ctx context.Context, window time.Duration) ([]models.TrafficEntry, error) {
	since := time.Now().Add(-window).Unix()

	results, err := r.client.ZRangeByScore(ctx, trafficKey, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.TrafficEntry, 0, len(results))
	for _, raw := range results {
		var entry models.TrafficEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveAttack stores an attack in the active hash and the history set
func (r *RedisStore) SaveAttack(ctx context.Context, attack models.Attack) error {
	data, err := json.Marshal(attack)
	if err != nil {
		return err
	}

	if err := r.client.HSet(ctx, attacksActiveKey, attack.ID, string(data)).Err(); err != nil {
		return err
	}
	return r.client.ZAdd(ctx, attacksHistKey, redis.Z{
		Score:  float64(attack.DetectedAt.Unix()),
		Member: attack.ID,
	}).Err()
}

// ActiveAttacks returns the attacks currently marked active
func (r *RedisStore) ActiveAttacks(ctx context.Context) ([]models.Attack, error) {
	data, err := r.client.HGetAll(ctx, attacksActiveKey).Result()
	if err != nil {
		return nil, err
	}

	attacks := make([]models.Attack, 0, len(data))
	for _, raw := range data {
		var attack models.Attack
		if err := json.Unmarshal([]byte(raw), &attack); err != nil {
			continue
		}
		attacks = append(attacks, attack)
	}
	return attacks, nil
}

// PublishAlert publishes an alert on the pub/sub channel
func (r *RedisStore) PublishAlert(ctx context.Context, alert models.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, alertChannel, string(data)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
