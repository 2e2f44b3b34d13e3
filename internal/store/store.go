// Package store keeps an optional Postgres log of scored submissions.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS prediction_logs (
	id             UUID PRIMARY KEY,
	channel        TEXT NOT NULL,
	record         JSONB NOT NULL,
	risk_level     TEXT NOT NULL,
	confidence     DOUBLE PRECISION,
	target_hr      TEXT NOT NULL,
	duration       TEXT NOT NULL,
	latency_ms     DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
)`

// Entry is one logged prescription.
type Entry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Channel    string          `db:"channel" json:"channel"`
	Record     json.RawMessage `db:"record" json:"record"`
	RiskLevel  string          `db:"risk_level" json:"risk_level"`
	Confidence *float64        `db:"confidence" json:"confidence,omitempty"`
	TargetHR   string          `db:"target_hr" json:"target_hr"`
	Duration   string          `db:"duration" json:"duration"`
	LatencyMs  float64         `db:"latency_ms" json:"latency_ms"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// NewEntry flattens a prescription into a log row.
func NewEntry(channel string, rx *pipeline.Prescription, now time.Time) (Entry, error) {
	record, err := json.Marshal(rx.Record.Map())
	if err != nil {
		return Entry{}, fmt.Errorf("marshal record: %w", err)
	}
	return Entry{
		ID:         rx.ID,
		Channel:    channel,
		Record:     record,
		RiskLevel:  rx.Risk.Label,
		Confidence: rx.Risk.Confidence,
		TargetHR:   rx.HeartRate.Label,
		Duration:   rx.Duration.Label,
		LatencyMs:  float64(rx.Elapsed.Microseconds()) / 1000.0,
		CreatedAt:  now.UTC(),
	}, nil
}

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the prediction_logs table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate prediction_logs: %w", err)
	}
	return nil
}

// Record logs one prescription.
func (s *Store) Record(ctx context.Context, channel string, rx *pipeline.Prescription) error {
	e, err := NewEntry(channel, rx, time.Now())
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO prediction_logs
			(id, channel, record, risk_level, confidence, target_hr, duration, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID.String(), e.Channel, []byte(e.Record), e.RiskLevel, e.Confidence,
		e.TargetHR, e.Duration, e.LatencyMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction log: %w", err)
	}
	return nil
}

// Recent returns the newest entries first, at most limit of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)
	rows, err := s.pool.Query(ctx, `
		SELECT id, channel, record, risk_level, confidence, target_hr, duration, latency_ms, created_at
		FROM prediction_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query prediction logs: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[Entry])
	if err != nil {
		return nil, fmt.Errorf("scan prediction logs: %w", err)
	}
	return entries, nil
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ClampLimit maps a requested page size into [1, MaxLimit], using DefaultLimit
// for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
