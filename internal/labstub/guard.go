package labstub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UploadGuard rejects re-uploads of the same file name for the same user,
// mirroring the duplicate check the real service performs against its
// database.
type UploadGuard interface {
	IsDuplicate(ctx context.Context, userID, fileName string) (bool, error)
	Mark(ctx context.Context, userID, fileName string) error
}

// MemoryGuard is the default in-process guard.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{seen: make(map[string]struct{})}
}

func (g *MemoryGuard) IsDuplicate(_ context.Context, userID, fileName string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[userID+"/"+fileName]
	return ok, nil
}

func (g *MemoryGuard) Mark(_ context.Context, userID, fileName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[userID+"/"+fileName] = struct{}{}
	return nil
}

const guardTTL = 24 * time.Hour

// RedisGuard keeps the duplicate set in Redis so it survives stub restarts.
// Key format: upload:<user_id>:<file_name>
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) IsDuplicate(ctx context.Context, userID, fileName string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(userID, fileName)).Result()
	if err != nil {
		return false, fmt.Errorf("upload guard check: %w", err)
	}
	return n > 0, nil
}

func (g *RedisGuard) Mark(ctx context.Context, userID, fileName string) error {
	return g.client.Set(ctx, g.key(userID, fileName), "1", guardTTL).Err()
}

func (g *RedisGuard) key(userID, fileName string) string {
	return fmt.Sprintf("upload:%s:%s", userID, fileName)
}

const redisConnectTimeout = 5 * time.Second

// ConnectRedis initialises a Redis client and validates connectivity with a
// ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
