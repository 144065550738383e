package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis manages Redis connections
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(addr string) (*Redis, error) {
	if addr == "" {
		return &Redis{}, nil
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		// Try as plain address
		opts = &redis.Options{
			Addr: addr,
		}
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	log.Println("Connected to Redis")
	return &Redis{client: client}, nil
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	if r != nil && r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Client returns the underlying Redis client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// IsConnected returns true if Redis is connected
func (r *Redis) IsConnected() bool {
	return r != nil && r.client != nil
}

// PowerNetworkCacheEntry mirrors sim's network_id -> {capacity, load} cache
// (spec.md §3 "Power network cache"). Cached here so a read replica can
// answer network-status queries without round-tripping through the driver.
type PowerNetworkCacheEntry struct {
	NetworkID string  `json:"network_id"`
	Capacity  int     `json:"capacity"`
	Load      int     `json:"load"`
	Ratio     float64 `json:"ratio"`
}

// SetPowerNetworks caches the full power-network resolution for a world,
// keyed for the config's resolve_interval cadence (spec.md §4.4).
func (r *Redis) SetPowerNetworks(ctx context.Context, worldID string, networks []PowerNetworkCacheEntry) error {
	if !r.IsConnected() {
		return nil
	}
	data, err := json.Marshal(networks)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, powerNetworksKey(worldID), data, 0).Err()
}

// GetPowerNetworks reads back the cached power-network resolution.
func (r *Redis) GetPowerNetworks(ctx context.Context, worldID string) ([]PowerNetworkCacheEntry, error) {
	if !r.IsConnected() {
		return nil, nil
	}
	data, err := r.client.Get(ctx, powerNetworksKey(worldID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var networks []PowerNetworkCacheEntry
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, err
	}
	return networks, nil
}

// PublishTick announces a completed tick on the world's pub/sub channel so
// the save-interval heartbeat (spec.md §6 save_interval_ms) can be driven
// out-of-process without polling Postgres.
func (r *Redis) PublishTick(ctx context.Context, worldID string, tick int) error {
	if !r.IsConnected() {
		return nil
	}
	return r.client.Publish(ctx, tickChannel(worldID), tick).Err()
}

// SubscribeTicks returns a channel of tick numbers published for a world.
func (r *Redis) SubscribeTicks(ctx context.Context, worldID string) (<-chan int, func()) {
	sub := r.client.Subscribe(ctx, tickChannel(worldID))
	out := make(chan int, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var tick int
			if _, err := fmt.Sscanf(msg.Payload, "%d", &tick); err == nil {
				out <- tick
			}
		}
	}()
	return out, func() { sub.Close() }
}

// SetSaveHeartbeat records the last time the persistence collaborator
// completed a save_dirty pass, with a TTL of twice the given interval so
// a stalled saver is observable.
func (r *Redis) SetSaveHeartbeat(ctx context.Context, worldID string, interval time.Duration) error {
	if !r.IsConnected() {
		return nil
	}
	return r.client.Set(ctx, heartbeatKey(worldID), time.Now().Unix(), interval*2).Err()
}

func powerNetworksKey(worldID string) string { return "hollowsphere:power:" + worldID }
func tickChannel(worldID string) string      { return "hollowsphere:ticks:" + worldID }
func heartbeatKey(worldID string) string     { return "hollowsphere:heartbeat:" + worldID }
