package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"calma-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScriptLoader loads quiz script JSONB from Postgres.
type ScriptLoader struct {
	pool *pgxpool.Pool
}

func NewScriptLoader(pool *pgxpool.Pool) *ScriptLoader {
	return &ScriptLoader{pool: pool}
}

func (l *ScriptLoader) LoadScript(ctx context.Context, scriptID string) (domain.Script, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quiz_scripts WHERE id=$1`, scriptID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Script{}, domain.ErrScriptNotFound
	}
	if err != nil {
		return domain.Script{}, fmt.Errorf("load script: %w", err)
	}
	var script domain.Script
	if err := json.Unmarshal(raw, &script); err != nil {
		return domain.Script{}, fmt.Errorf("unmarshal script: %w", err)
	}
	return script, nil
}
