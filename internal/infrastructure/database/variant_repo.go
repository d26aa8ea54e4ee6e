package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"voicebot/internal/domain/entities"
	"voicebot/internal/ports/output"
)

// Ensure VariantRepository implements the output.VariantSource port.
var _ output.VariantSource = (*VariantRepository)(nil)

// VariantRepository loads message definitions from Postgres. Variants are
// ordered by (key, position); samples live in their own table keyed by
// message key, stored as JSON.
type VariantRepository struct {
	pool *pgxpool.Pool
}

func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// Load implements output.VariantSource.
func (r *VariantRepository) Load(ctx context.Context) ([]entities.MessageDef, error) {
	samples, err := r.loadSamples(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT key, text, weight, condition
		   FROM message_variants
		  ORDER BY key, position`)
	if err != nil {
		return nil, fmt.Errorf("query message variants: %w", err)
	}
	defer rows.Close()

	byKey := make(map[string]int)
	var defs []entities.MessageDef
	for rows.Next() {
		var (
			key, text, condition string
			weight               float64
		)
		if err := rows.Scan(&key, &text, &weight, &condition); err != nil {
			return nil, fmt.Errorf("scan message variant: %w", err)
		}
		idx, ok := byKey[key]
		if !ok {
			idx = len(defs)
			byKey[key] = idx
			defs = append(defs, entities.MessageDef{Key: key, Sample: samples[key]})
		}
		defs[idx].Variants = append(defs[idx].Variants, entities.VariantDef{
			Text:      text,
			Weight:    weight,
			Condition: condition,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read message variants: %w", err)
	}
	return defs, nil
}

func (r *VariantRepository) loadSamples(ctx context.Context) (map[string]entities.RenderContext, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, sample FROM message_samples`)
	if err != nil {
		return nil, fmt.Errorf("query message samples: %w", err)
	}
	defer rows.Close()

	out := make(map[string]entities.RenderContext)
	for rows.Next() {
		var (
			key  string
			blob []byte
		)
		if err := rows.Scan(&key, &blob); err != nil {
			return nil, fmt.Errorf("scan message sample: %w", err)
		}
		var sample entities.RenderContext
		if err := json.Unmarshal(blob, &sample); err != nil {
			return nil, fmt.Errorf("decode sample for %q: %w", key, err)
		}
		out[key] = sample
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read message samples: %w", err)
	}
	return out, nil
}
