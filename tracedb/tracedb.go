// Package tracedb records per-frame animation traces in SQLite.
//
// A Recorder is a sway.FrameTracer: install it with sway.WithFrameTracer and
// every tick writes one row per evaluated animation. Frames and Prune read
// and trim the log.
package tracedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/phanxgames/sway"
)

// Sample is one animation's state after one tick.
type Sample struct {
	Now       int64
	Node      sway.ID
	Animation sway.ID
	Property  sway.ID
	State     string
	Value     sway.Value // nil for timers
}

// Recorder writes traces to a SQLite database.
type Recorder struct {
	db *sql.DB

	mu     sync.Mutex
	err    error
	frames int
}

// Open opens or creates the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Close closes the database. It is safe on a nil Recorder.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// DB returns the underlying handle.
func (r *Recorder) DB() *sql.DB {
	return r.db
}

// Err returns the first error a TraceFrame call ran into.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// FramesWritten returns how many frames were stored.
func (r *Recorder) FramesWritten() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// TraceFrame stores traces in one transaction. Failures are logged and kept
// for Err; the tick is never interrupted.
func (r *Recorder) TraceFrame(now int64, traces []sway.AnimationTrace) {
	if len(traces) == 0 {
		return
	}
	err := r.write(context.Background(), now, traces)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		sway.Logger().Error("trace frame", "adapter", "tracedb", "now", now, "err", err)
		if r.err == nil {
			r.err = err
		}
		return
	}
	r.frames++
}

func (r *Recorder) write(ctx context.Context, now int64, traces []sway.AnimationTrace) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin frame tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO frames(now_ns, node_id, animation_id, property_id, state, value)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range traces {
		var value any
		if t.Value != nil {
			data, err := sway.MarshalValue(t.Value)
			if err != nil {
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("encode value of %s: %w", t.Animation, err)
			}
			value = string(data)
		}
		if _, err := stmt.ExecContext(ctx, now, dbID(t.Node), dbID(t.Animation), dbID(t.Property), t.State.String(), value); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert trace of %s: %w", t.Animation, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frame: %w", err)
	}
	return nil
}

// Frames returns the samples of one animation in tick order.
func (r *Recorder) Frames(ctx context.Context, animation sway.ID) ([]Sample, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT now_ns, node_id, animation_id, property_id, state, value
FROM frames
WHERE animation_id = ?
ORDER BY now_ns, seq`, dbID(animation))
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			s                Sample
			node, anim, prop int64
			value            sql.NullString
		)
		if err := rows.Scan(&s.Now, &node, &anim, &prop, &s.State, &value); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		s.Node, s.Animation, s.Property = fromDB(node), fromDB(anim), fromDB(prop)
		if value.Valid {
			v, err := sway.UnmarshalValue([]byte(value.String))
			if err != nil {
				return nil, fmt.Errorf("decode value at %d: %w", s.Now, err)
			}
			s.Value = v
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return out, nil
}

// ErrInvalidHorizon is returned by Prune for a negative cutoff.
var ErrInvalidHorizon = errors.New("tracedb: invalid prune horizon")

// Prune deletes samples recorded before the tick time before and returns
// how many were removed.
func (r *Recorder) Prune(ctx context.Context, before int64) (int64, error) {
	if before < 0 {
		return 0, ErrInvalidHorizon
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM frames WHERE now_ns < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("prune frames: %w", err)
	}
	return res.RowsAffected()
}

// SQLite integers are signed; ids are stored bit for bit.
func dbID(id sway.ID) int64  { return int64(id.Uint64()) }
func fromDB(v int64) sway.ID { return sway.IDFromUint64(uint64(v)) }
