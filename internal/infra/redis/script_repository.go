package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"calma-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 10 * time.Second

// ScriptLoader fetches quiz scripts from a backing store (e.g., Postgres JSONB).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches scripts in Redis as JSON and falls back to a loader on cache miss.
// Scripts are stored as: SET calma:script:{scriptID} {json} EX ttl
type ScriptRepository struct {
	client *redis.Client
	loader ScriptLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewScriptRepository(client *redis.Client, loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	if script, ok := r.fromCache(ctx, scriptID); ok {
		return script, nil
	}

	ch := r.sf.DoChan(scriptID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		// Re-check cache in case another goroutine filled it.
		if script, ok := r.fromCache(loadCtx, scriptID); ok {
			return script, nil
		}

		script, err := r.loader.LoadScript(loadCtx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}
		if err := script.Validate(); err != nil {
			return domain.Script{}, err
		}

		if raw, err := json.Marshal(script); err == nil {
			_ = r.client.Set(loadCtx, r.key(scriptID), raw, r.ttlWithJitter()).Err()
		}
		return script, nil
	})
	select {
	case <-ctx.Done():
		return domain.Script{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Script{}, res.Err
		}
		return res.Val.(domain.Script), nil
	}
}

func (r *ScriptRepository) fromCache(ctx context.Context, scriptID string) (domain.Script, bool) {
	raw, err := r.client.Get(ctx, r.key(scriptID)).Bytes()
	if err != nil {
		return domain.Script{}, false
	}
	var script domain.Script
	if err := json.Unmarshal(raw, &script); err != nil {
		return domain.Script{}, false
	}
	return script, true
}

func (r *ScriptRepository) key(scriptID string) string {
	return "calma:script:" + scriptID
}

func (r *ScriptRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
