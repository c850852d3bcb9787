package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wrenhall/botlink/internal/infrastructure/database"
	"github.com/wrenhall/botlink/internal/state"
)

// Source classifies why a journal entry was recorded.
const (
	// SourceBaseline marks a full snapshot applied at (re)connect.
	SourceBaseline = "baseline"

	// SourceDelta marks an incremental merge.
	SourceDelta = "delta"
)

// Entry is one row of the state-change journal.
type Entry struct {
	ID         int64
	RecordedAt time.Time
	Source     string
	Version    uint64
	Snapshot   *state.Tree
}

// Journal persists post-mutation state snapshots to SQLite. Rows are
// append-only; Prune trims by age.
type Journal struct {
	db *database.DB
}

// New creates a journal over an opened, migrated database.
func New(db *database.DB) *Journal {
	return &Journal{db: db}
}

// Record appends one entry with the given source and store version.
func (j *Journal) Record(ctx context.Context, source string, version uint64, tree *state.Tree) error {
	snapshot, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO state_history (recorded_at, source, version, snapshot)
		VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		source,
		int64(version), //nolint:gosec // store versions stay far below int64 range
		string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, recorded_at, source, version, snapshot
		FROM state_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			recordedAt string
			version    int64
			snapshot   string
		)
		if err := rows.Scan(&e.ID, &recordedAt, &e.Source, &version, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}

		e.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt) //nolint:errcheck // Format is controlled
		e.Version = uint64(version)                                //nolint:gosec // written from uint64 above

		var tree state.Tree
		if err := json.Unmarshal([]byte(snapshot), &tree); err != nil {
			return nil, fmt.Errorf("decoding snapshot %d: %w", e.ID, err)
		}
		e.Snapshot = &tree

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Latest returns the most recent entry, or nil when the journal is
// empty.
func (j *Journal) Latest(ctx context.Context) (*Entry, error) {
	entries, err := j.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Prune deletes entries older than the retention window. Returns the
// number of rows removed.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)

	result, err := j.db.ExecContext(ctx,
		"DELETE FROM state_history WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning journal: %w", err)
	}
	return result.RowsAffected()
}
