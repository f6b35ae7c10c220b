package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// AudioCache shares fetched clips between instances.
// Clips are stored as: SET calma:audio:{sha256(key)} {mp3 bytes} EX ttl
type AudioCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAudioCache(client *redis.Client, ttl time.Duration) *AudioCache {
	return &AudioCache{client: client, ttl: ttl}
}

func (c *AudioCache) Get(ctx context.Context, key string) ([]byte, bool) {
	audio, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil || len(audio) == 0 {
		return nil, false
	}
	return audio, true
}

func (c *AudioCache) Set(ctx context.Context, key string, audio []byte) {
	if len(audio) == 0 {
		return
	}
	_ = c.client.Set(ctx, c.key(key), audio, c.ttl).Err()
}

func (c *AudioCache) key(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "calma:audio:" + hex.EncodeToString(sum[:])
}
