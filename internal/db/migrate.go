package db

import (
	"marketsearch/internal/models"
)

// searchFunctionsDDL installs the similarity-search functions the API
// delegates to. On hosted deployments these already exist; CREATE OR
// REPLACE keeps a fresh database usable without manual schema steps.
const searchFunctionsDDL = `
CREATE OR REPLACE FUNCTION match_markets(query_embedding vector(1536), match_count int)
RETURNS TABLE (
	id text,
	title text,
	ticker text,
	slug text,
	outcomes jsonb,
	outcome_prices jsonb,
	price_updated_at timestamptz,
	similarity float8
)
LANGUAGE sql STABLE AS $$
	SELECT m.id,
	       m.title,
	       m.external_market_id,
	       m.slug,
	       m.outcomes,
	       m.outcome_prices,
	       m.price_updated_at,
	       1 - (e.embedding <=> query_embedding) AS similarity
	FROM markets m
	JOIN kalshi_events e ON e.id = m.event_id
	WHERE e.embedding IS NOT NULL
	  AND m.is_active
	ORDER BY e.embedding <=> query_embedding
	LIMIT match_count;
$$;

CREATE OR REPLACE FUNCTION search_kalshi_events_with_markets(
	query_embedding vector(1536),
	match_count int,
	markets_per_event int
)
RETURNS jsonb
LANGUAGE sql STABLE AS $$
	SELECT jsonb_build_object('results', COALESCE(jsonb_agg(ev.item), '[]'::jsonb))
	FROM (
		SELECT jsonb_build_object(
			'event_id', e.id,
			'event_title', e.title,
			'category', e.category,
			'similarity', 1 - (e.embedding <=> query_embedding),
			'markets', (
				SELECT COALESCE(jsonb_agg(jsonb_build_object(
					'market_id', m.id,
					'market_title', m.title,
					'external_market_id', m.external_market_id,
					'outcomes', m.outcomes,
					'outcome_prices', m.outcome_prices
				)), '[]'::jsonb)
				FROM (
					SELECT *
					FROM markets
					WHERE event_id = e.id AND is_active
					LIMIT markets_per_event
				) m
			)
		) AS item
		FROM kalshi_events e
		WHERE e.embedding IS NOT NULL
		ORDER BY e.embedding <=> query_embedding
		LIMIT match_count
	) ev;
$$;
`

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}

	if err := db.Gorm.AutoMigrate(
		&models.Event{},
		&models.Market{},
		&models.Outcome{},
		&models.MarketPrice{},
	); err != nil {
		return err
	}

	return db.Gorm.Exec(searchFunctionsDDL).Error
}
