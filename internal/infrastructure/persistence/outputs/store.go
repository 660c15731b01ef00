// Package outputs implements persisted node-output storage: an optional
// pgx-backed loader consulted by partial re-execution (runner.Runner.Outputs)
// when the caller doesn't supply cached_outputs inline, and a writer that
// saves each node's output as it completes so a later run can reuse it.
package outputs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/pkg/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists node outputs keyed by (run_id, node_id).
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store around an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save upserts a node's output for a run.
func (s *Store) Save(ctx context.Context, runID, nodeID string, out graphrun.NodeOutput) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return errors.Internal("failed to marshal node output", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO node_outputs (run_id, node_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, node_id) DO UPDATE
		SET payload = EXCLUDED.payload
	`, runID, nodeID, payload, time.Now())

	if err != nil {
		return errors.Internal("failed to save node output", err)
	}
	return nil
}

// Load implements runner.OutputStore's Load: it fetches a previously saved output,
// returning (zero value, false, nil) when none exists for this run/node.
func (s *Store) Load(ctx context.Context, runID, nodeID string) (graphrun.NodeOutput, bool, error) {
	var payload []byte

	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM node_outputs WHERE run_id = $1 AND node_id = $2
	`, runID, nodeID).Scan(&payload)
	if err != nil {
		return graphrun.NodeOutput{}, false, nil
	}

	var out graphrun.NodeOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return graphrun.NodeOutput{}, false, errors.Internal("failed to unmarshal node output", err)
	}
	return out, true, nil
}
