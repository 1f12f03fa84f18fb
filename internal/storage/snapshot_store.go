// Package storage persists per-timeslot forward-window snapshots so a
// session's market picture survives restarts and can be inspected
// offline.
package storage

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS forward_snapshots (
	anchor INTEGER NOT NULL,
	slot_offset INTEGER NOT NULL,
	mwh REAL NOT NULL,
	price REAL NOT NULL,
	PRIMARY KEY (anchor, slot_offset)
);
`

// SnapshotStore writes forward windows to SQLite. Safe for concurrent
// use through database/sql; the pool is capped at one connection since
// SQLite allows a single writer.
type SnapshotStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewSnapshotStore opens (creating if needed) the SQLite database at dsn
// and ensures the schema.
func NewSnapshotStore(dsn string, log *logger.Logger) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStorageInitFailed, err, "failed to open database %q", dsn)
	}

	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorageInitFailed, "failed to create schema", err)
	}

	return &SnapshotStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger:  log,
	}, nil
}

// SaveWindow upserts every record of the window under its anchor,
// replacing any snapshot previously taken for the same anchor.
func (s *SnapshotStore) SaveWindow(window types.ForwardWindow) error {
	if len(window.Records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	del := s.builder.Delete("forward_snapshots").Where(sq.Eq{"anchor": int(window.Anchor)})

	query, args, err := del.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to build delete", err)
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to clear previous snapshot", err)
	}

	insert := s.builder.Insert("forward_snapshots").Columns("anchor", "slot_offset", "mwh", "price")
	for i, record := range window.Records {
		insert = insert.Values(int(window.Anchor), i, record.TotalMWh, record.MeanPrice)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to build insert", err)
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to insert snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWriteFailed, "failed to commit snapshot", err)
	}

	s.logger.Debug("forward window persisted",
		zap.Int("anchor", int(window.Anchor)),
		zap.Int("records", len(window.Records)),
	)

	return nil
}

// Window reads back the snapshot stored for an anchor, records ordered
// by offset. Returns ErrCodeDataNotFound when no snapshot exists.
func (s *SnapshotStore) Window(anchor types.DeliverySlot) (types.ForwardWindow, error) {
	query, args, err := s.builder.
		Select("slot_offset", "mwh", "price").
		From("forward_snapshots").
		Where(sq.Eq{"anchor": int(anchor)}).
		OrderBy("slot_offset ASC").
		ToSql()
	if err != nil {
		return types.ForwardWindow{}, errors.Wrap(errors.ErrCodeStorageQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return types.ForwardWindow{}, errors.Wrap(errors.ErrCodeStorageQueryFailed, "failed to query snapshot", err)
	}
	defer rows.Close()

	var records []types.ClearedRecord
	for rows.Next() {
		var offset int

		var record types.ClearedRecord
		if err := rows.Scan(&offset, &record.TotalMWh, &record.MeanPrice); err != nil {
			return types.ForwardWindow{}, errors.Wrap(errors.ErrCodeStorageQueryFailed, "failed to scan snapshot row", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return types.ForwardWindow{}, errors.Wrap(errors.ErrCodeStorageQueryFailed, "failed to read snapshot rows", err)
	}

	if len(records) == 0 {
		return types.ForwardWindow{}, errors.Newf(errors.ErrCodeDataNotFound, "no snapshot for anchor %d", int(anchor))
	}

	return types.ForwardWindow{Anchor: anchor, Records: records}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
