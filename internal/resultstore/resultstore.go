// Package resultstore persists per-week solve outcomes to a local sqlite
// database, grounded on the teacher's internal/database package: a pure-Go
// driver (modernc.org/sqlite), WAL journal mode, and a small set of PRAGMAs
// tuned for an embedded, single-writer workload rather than a server DB.
package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aristath/adequacy-core/internal/weekly"
)

// Store is a concrete weekly.ResultWriter backed by sqlite.
type Store struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS weekly_results (
	run_id           TEXT PRIMARY KEY,
	year             INTEGER NOT NULL,
	week             INTEGER NOT NULL,
	pass1_status     INTEGER NOT NULL,
	pass1_obj_value  REAL NOT NULL,
	pass1_solve_ms   INTEGER NOT NULL,
	pass2_status     INTEGER NOT NULL,
	pass2_obj_value  REAL NOT NULL,
	pass2_solve_ms   INTEGER NOT NULL,
	recorded_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_weekly_results_year_week ON weekly_results(year, week);
`

// Open creates (or opens) the sqlite database at path, applying the
// connection-string PRAGMAs the teacher uses for its "standard" profile:
// WAL journaling, NORMAL synchronous, and foreign keys on.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve resultstore path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("create resultstore directory: %w", err)
	}

	connStr := absPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=cache_size(-16000)"

	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open resultstore: %w", err)
	}
	conn.SetMaxOpenConns(1) // single-writer embedded workload

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping resultstore: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply resultstore schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// WriteWeek implements driver.ResultWriter, recording both pass outcomes
// for p.
func (s *Store) WriteWeek(ctx context.Context, p *weekly.Problem) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO weekly_results (
			run_id, year, week,
			pass1_status, pass1_obj_value, pass1_solve_ms,
			pass2_status, pass2_obj_value, pass2_solve_ms,
			recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			pass1_status=excluded.pass1_status,
			pass1_obj_value=excluded.pass1_obj_value,
			pass1_solve_ms=excluded.pass1_solve_ms,
			pass2_status=excluded.pass2_status,
			pass2_obj_value=excluded.pass2_obj_value,
			pass2_solve_ms=excluded.pass2_solve_ms
	`,
		p.RunID.String(), p.Year, p.Week,
		int(p.Pass1.Status), p.Pass1.ObjValue, p.Pass1.SolveTime.Milliseconds(),
		int(p.Pass2.Status), p.Pass2.ObjValue, p.Pass2.SolveTime.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write weekly result: %w", err)
	}
	return nil
}

// WeekResult is a row read back for inspection (reporting, replay tooling).
type WeekResult struct {
	RunID        string
	Year, Week   int
	Pass1Status  weekly.Status
	Pass1ObjValue float64
	Pass2Status  weekly.Status
	Pass2ObjValue float64
}

// LatestForWeek returns the most recently recorded result for year/week, if
// any.
func (s *Store) LatestForWeek(ctx context.Context, year, week int) (*WeekResult, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT run_id, year, week, pass1_status, pass1_obj_value, pass2_status, pass2_obj_value
		FROM weekly_results
		WHERE year = ? AND week = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, year, week)

	var r WeekResult
	var pass1Status, pass2Status int
	if err := row.Scan(&r.RunID, &r.Year, &r.Week, &pass1Status, &r.Pass1ObjValue, &pass2Status, &r.Pass2ObjValue); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("read weekly result: %w", err)
	}
	r.Pass1Status = weekly.Status(pass1Status)
	r.Pass2Status = weekly.Status(pass2Status)
	return &r, nil
}
