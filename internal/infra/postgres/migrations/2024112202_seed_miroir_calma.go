package migrations

import (
	"context"
	"encoding/json"

	"calma-service/internal/domain"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			raw, err := json.Marshal(domain.MiroirCalmaScript())
			if err != nil {
				return err
			}
			_, err = db.ExecContext(ctx,
				`INSERT INTO quiz_scripts (id, data) VALUES (?, ?)
				ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
				domain.MiroirCalmaID, string(raw))
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM quiz_scripts WHERE id = ?`, domain.MiroirCalmaID)
			return err
		},
	)
}
