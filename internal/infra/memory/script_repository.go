package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"calma-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 10 * time.Second

// ScriptLoader fetches quiz scripts from a backing store (e.g., Postgres JSONB).
type ScriptLoader interface {
	LoadScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// ScriptRepository caches scripts with TTL to avoid repeated DB hits.
type ScriptRepository struct {
	loader ScriptLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedScript
}

type cachedScript struct {
	script    domain.Script
	expiresAt time.Time
}

func NewScriptRepository(loader ScriptLoader, ttl time.Duration) *ScriptRepository {
	return &ScriptRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedScript),
	}
}

func (r *ScriptRepository) GetScript(ctx context.Context, scriptID string) (domain.Script, error) {
	if script, ok := r.cached(scriptID); ok {
		return script, nil
	}

	ch := r.sf.DoChan(scriptID, func() (interface{}, error) {
		if script, ok := r.cached(scriptID); ok {
			return script, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		script, err := r.loader.LoadScript(loadCtx, scriptID)
		if err != nil {
			return domain.Script{}, err
		}
		if err := script.Validate(); err != nil {
			return domain.Script{}, err
		}

		r.mu.Lock()
		r.cache[scriptID] = cachedScript{
			script:    script,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
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

func (r *ScriptRepository) cached(scriptID string) (domain.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[scriptID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Script{}, false
	}
	return entry.script, true
}

func (r *ScriptRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticScriptLoader is a loader backed by an in-memory map (built-in script, tests).
type StaticScriptLoader struct {
	scripts map[string]domain.Script
}

func NewStaticScriptLoader(scripts map[string]domain.Script) *StaticScriptLoader {
	return &StaticScriptLoader{scripts: scripts}
}

func (l *StaticScriptLoader) LoadScript(_ context.Context, scriptID string) (domain.Script, error) {
	if script, ok := l.scripts[scriptID]; ok {
		return script, nil
	}
	return domain.Script{}, domain.ErrScriptNotFound
}
