package ontology

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type conceptRepoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Store backed by the ontology_concept table.
func NewRepoPG(pool *pgxpool.Pool) Store { return &conceptRepoPG{pool: pool} }

const selectConcept = `SELECT concept_key, COALESCE(parent_key,''), name, hlevel, visual_attributes,
        basecode, dimcode, operator, table_name, is_modifier
 FROM ontology_concept`

func (r *conceptRepoPG) GetByKey(ctx context.Context, key string) (*Record, error) {
	var rec Record
	var kind string
	err := r.pool.QueryRow(ctx, selectConcept+` WHERE concept_key = $1`, key).Scan(
		&rec.Key, &rec.ParentKey, &rec.Name, &rec.Level, &kind,
		&rec.BaseCode, &rec.DimCodeRaw, &rec.OperatorOp, &rec.TableName, &rec.IsModifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get concept %s: %w", key, err)
	}
	rec.Kind = Kind(kind)
	return &rec, nil
}

func (r *conceptRepoPG) Upsert(ctx context.Context, rec *Record) error {
	var parent *string
	if rec.ParentKey != "" {
		parent = Str(rec.ParentKey)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ontology_concept (concept_key, parent_key, name, hlevel, visual_attributes,
		        basecode, dimcode, operator, table_name, is_modifier)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (concept_key) DO UPDATE SET
		        parent_key = EXCLUDED.parent_key, name = EXCLUDED.name, hlevel = EXCLUDED.hlevel,
		        visual_attributes = EXCLUDED.visual_attributes, basecode = EXCLUDED.basecode,
		        dimcode = EXCLUDED.dimcode, operator = EXCLUDED.operator,
		        table_name = EXCLUDED.table_name, is_modifier = EXCLUDED.is_modifier`,
		rec.Key, parent, rec.Name, rec.Level, string(rec.Kind),
		rec.BaseCode, rec.DimCodeRaw, rec.OperatorOp, rec.TableName, rec.IsModifier)
	if err != nil {
		return fmt.Errorf("upsert concept %s: %w", rec.Key, err)
	}
	return nil
}
