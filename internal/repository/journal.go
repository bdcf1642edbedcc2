package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ArenaPull/internal/domain/models"
	domrepo "ArenaPull/internal/domain/repository"
	pkgch "ArenaPull/pkg/clickhouse"
	pkgkafka "ArenaPull/pkg/kafka"
	applogger "ArenaPull/pkg/logger"
)

// NoopJournal discards upload records. Used when journal.type is "none".
type NoopJournal struct{}

// NewNoopJournal creates a journal that records nothing.
func NewNoopJournal() domrepo.Journal { return &NoopJournal{} }

func (j *NoopJournal) Record(ctx context.Context, rec *models.UploadRecord) error { return nil }

func (j *NoopJournal) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	return nil, domrepo.ErrQueryUnsupported
}

func (j *NoopJournal) Close() error { return nil }

// KafkaJournal publishes each upload record as an event, keyed by challenge
// id so all records for a challenge land on one partition.
type KafkaJournal struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaJournal creates a Kafka-backed journal.
func NewKafkaJournal(producer *pkgkafka.Producer, topic string) domrepo.Journal {
	return &KafkaJournal{producer: producer, topic: topic}
}

func (j *KafkaJournal) Record(ctx context.Context, rec *models.UploadRecord) error {
	key := []byte(strconv.FormatInt(rec.ChallengeID, 10))
	if err := j.producer.Publish(ctx, j.topic, key, rec); err != nil {
		return fmt.Errorf("journal publish: %w", err)
	}
	return nil
}

func (j *KafkaJournal) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	return nil, domrepo.ErrQueryUnsupported
}

func (j *KafkaJournal) Close() error {
	if j.producer != nil {
		return j.producer.Close()
	}
	return nil
}

// Producer exposes the underlying producer so it can back other publishers,
// e.g. the log collector.
func (j *KafkaJournal) Producer() *pkgkafka.Producer { return j.producer }

// ClickHouseJournal inserts upload records into a MergeTree table and serves
// the read side of GET /api/uploads.
type ClickHouseJournal struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseJournal creates a ClickHouse-backed journal.
func NewClickHouseJournal(ch *pkgch.Client, table string) *ClickHouseJournal {
	return &ClickHouseJournal{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (j *ClickHouseJournal) SetLogger(l *applogger.Logger) { j.l = l }

func (j *ClickHouseJournal) Record(ctx context.Context, rec *models.UploadRecord) error {
	series, err := json.Marshal(rec.Series)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	failed, err := json.Marshal(rec.FailedSeries)
	if err != nil {
		return fmt.Errorf("marshal failed series: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s
        (challenge_id, challenge_name, model_name, outcome, steps, frequency, horizon, uploaded_at, series, failed_series, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, j.table)
	_, err = j.db.ExecContext(ctx, q,
		rec.ChallengeID,
		rec.ChallengeName,
		rec.ModelName,
		rec.Outcome,
		int32(rec.Steps),
		rec.Frequency,
		rec.Horizon,
		rec.UploadedAt,
		string(series),
		string(failed),
		rec.Error,
	)
	if err != nil {
		if j.l != nil {
			j.l.Error("clickhouse journal insert error",
				applogger.String("table", j.table),
				applogger.Int("challenge_id", int(rec.ChallengeID)),
				applogger.String("model", rec.ModelName),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) Recent(ctx context.Context, limit int) ([]*models.UploadRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT challenge_id, challenge_name, model_name, outcome, steps, frequency, horizon, uploaded_at, series, failed_series, error
        FROM %s ORDER BY uploaded_at DESC LIMIT ?`, j.table)
	rows, err := j.db.QueryContext(ctx, q, limit)
	if err != nil {
		if j.l != nil {
			j.l.Error("clickhouse journal query error",
				applogger.String("table", j.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	out := make([]*models.UploadRecord, 0, limit)
	for rows.Next() {
		var rec models.UploadRecord
		var steps int32
		var series, failed string
		if err := rows.Scan(&rec.ChallengeID, &rec.ChallengeName, &rec.ModelName, &rec.Outcome,
			&steps, &rec.Frequency, &rec.Horizon, &rec.UploadedAt, &series, &failed, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Steps = int(steps)
		if series != "" {
			if err := json.Unmarshal([]byte(series), &rec.Series); err != nil {
				return nil, fmt.Errorf("unmarshal series: %w", err)
			}
		}
		if failed != "" {
			if err := json.Unmarshal([]byte(failed), &rec.FailedSeries); err != nil {
				return nil, fmt.Errorf("unmarshal failed series: %w", err)
			}
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if j.l != nil {
		j.l.Debug("clickhouse journal query ok",
			applogger.String("table", j.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (j *ClickHouseJournal) Close() error {
	return nil // connection pool managed by pkg
}
