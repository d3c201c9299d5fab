package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/logger"
	"github.com/tomorrow-architect/planner-api/internal/models"
)

// StorageKey is the fixed key the plan snapshot lives under. It carries the
// name of the browser localStorage key the data originally migrated from.
const StorageKey = "tomorrow_architect_plans_v1"

// SnapshotRepository loads and saves the plan collection snapshot
type SnapshotRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SetLogger attaches a logger for load-recovery diagnostics
func (r *SnapshotRepository) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// Load reads the persisted snapshot and migrates it to the current schema.
// Missing state and unreadable state both recover to the built-in seed
// dataset; startup never fails on bad persisted data.
func (r *SnapshotRepository) Load(ctx context.Context) *models.Snapshot {
	var (
		version int
		payload string
	)

	query := `SELECT schema_version, payload FROM snapshots WHERE storage_key = $1`
	err := r.db.QueryRowContext(ctx, query, StorageKey).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SeedSnapshot()
	}
	if err != nil {
		r.warn("snapshot_load_failed_falling_back_to_seed", err)
		return models.SeedSnapshot()
	}

	plans, err := decodePlans(version, []byte(payload))
	if err != nil {
		r.warn("snapshot_parse_failed_falling_back_to_seed", err)
		return models.SeedSnapshot()
	}

	return models.Migrate(plans)
}

// decodePlans decodes a payload according to its recorded schema version.
// Version 1 payloads are the bare JSON array the browser wrote; version 2
// payloads carry the snapshot envelope.
func decodePlans(version int, payload []byte) ([]*models.Plan, error) {
	switch version {
	case models.SchemaVersionLegacy:
		var plans []*models.Plan
		if err := json.Unmarshal(payload, &plans); err != nil {
			return nil, fmt.Errorf("failed to parse legacy snapshot: %w", err)
		}
		return plans, nil
	default:
		var snap models.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		return snap.Plans, nil
	}
}

// Save persists the whole collection as a current-schema snapshot
func (r *SnapshotRepository) Save(ctx context.Context, plans []*models.Plan) error {
	snap := models.Snapshot{
		SchemaVersion: models.SchemaVersionCurrent,
		Plans:         plans,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (storage_key, schema_version, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key) DO UPDATE
		SET schema_version = excluded.schema_version,
		    payload = excluded.payload,
		    updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, StorageKey, snap.SchemaVersion, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Reset removes the persisted snapshot so the next load reseeds
func (r *SnapshotRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE storage_key = $1`, StorageKey); err != nil {
		return fmt.Errorf("failed to reset snapshot: %w", err)
	}
	return nil
}

// warn logs a load-recovery diagnostic. Parse failures carry fragments of the
// persisted payload, so the message is sanitized before it reaches the log.
func (r *SnapshotRepository) warn(msg string, err error) {
	if r.logger != nil {
		r.logger.Warn(msg, zap.String("error", logger.SanitizeError(err)))
	}
}
