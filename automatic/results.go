package automatic

import (
	"cmp"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var resultsHeader = []string{"m", "n", "k", "avg_time", "avg_states_visited"}

// ResultsFileName is the CSV file an engine's results are written to.
func ResultsFileName(engine string) string {
	return engine + "_results.csv"
}

type resultSink struct {
	dir      string
	engines  []string
	byEngine map[string][]ConfigResult
	db       *sql.DB
}

func newResultSink(opts Options, engines []string) (*resultSink, error) {
	s := &resultSink{
		dir:      opts.ResultsDir,
		engines:  engines,
		byEngine: map[string][]ConfigResult{},
	}
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return nil, err
		}
	}
	if opts.ResultsDB != "" {
		db, err := OpenResultsDB(opts.ResultsDB)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	return s, nil
}

// consume stores every result it is sent. After the first failure it
// keeps draining so senders never block.
func (s *resultSink) consume(results <-chan ConfigResult) error {
	var firstErr error
	for res := range results {
		if firstErr != nil {
			continue
		}
		if err := s.add(res); err != nil {
			log.Err(err).Str("engine", res.Engine).Stringer("config", res.Config).
				Msg("storing-result")
			firstErr = err
		}
	}
	return firstErr
}

func (s *resultSink) add(res ConfigResult) error {
	rows := append(s.byEngine[res.Engine], res)
	slices.SortFunc(rows, func(a, b ConfigResult) int {
		return cmp.Compare(a.Index, b.Index)
	})
	s.byEngine[res.Engine] = rows
	if s.dir != "" {
		// The whole file is rewritten each time.
		if err := WriteResultsFile(filepath.Join(s.dir, ResultsFileName(res.Engine)), rows); err != nil {
			return err
		}
	}
	if s.db != nil {
		if err := insertResult(s.db, res); err != nil {
			return err
		}
	}
	return nil
}

// Results returns everything stored so far, in plan order.
func (s *resultSink) Results() []ConfigResult {
	var all []ConfigResult
	for _, rows := range s.byEngine {
		all = append(all, rows...)
	}
	slices.SortFunc(all, func(a, b ConfigResult) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(slices.Index(s.engines, a.Engine), slices.Index(s.engines, b.Engine))
	})
	return all
}

func (s *resultSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteResultsFile writes results as CSV with the columns m, n, k,
// avg_time and avg_states_visited. The file is replaced atomically.
func WriteResultsFile(path string, results []ConfigResult) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	w := csv.NewWriter(tmp)
	if err := w.Write(resultsHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range results {
		err := w.Write([]string{
			strconv.Itoa(r.Config.M),
			strconv.Itoa(r.Config.N),
			strconv.Itoa(r.Config.K),
			strconv.FormatFloat(r.AvgTime, 'g', -1, 64),
			strconv.FormatFloat(r.AvgStates, 'f', -1, 64),
		})
		if err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

const createResultsTable = `CREATE TABLE IF NOT EXISTS experiment_results (
	engine TEXT NOT NULL,
	m INTEGER NOT NULL,
	n INTEGER NOT NULL,
	k INTEGER NOT NULL,
	runs INTEGER NOT NULL,
	avg_time REAL NOT NULL,
	avg_states_visited REAL NOT NULL,
	time_ci95 REAL NOT NULL,
	states_ci95 REAL NOT NULL,
	max_wins INTEGER NOT NULL,
	min_wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	recorded_at TEXT NOT NULL,
	PRIMARY KEY (engine, m, n, k));`

// OpenResultsDB opens (creating if needed) a SQLite results database.
func OpenResultsDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Results come from a single consumer goroutine.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createResultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}
	return db, nil
}

// isBusy reports whether another connection (possibly another experiment
// process sharing the database) holds the lock.
func isBusy(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

func insertResult(db *sql.DB, r ConfigResult) error {
	return retry.Do(
		func() error {
			_, err := db.Exec(`INSERT OR REPLACE INTO experiment_results
				(engine, m, n, k, runs, avg_time, avg_states_visited, time_ci95, states_ci95,
				max_wins, min_wins, draws, recorded_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.Engine, r.Config.M, r.Config.N, r.Config.K, r.Runs, r.AvgTime, r.AvgStates,
				r.TimeCI, r.StatesCI, r.MaxWins, r.MinWins, r.Draws,
				time.Now().UTC().Format(time.RFC3339))
			return err
		},
		retry.Attempts(5),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Warn().Err(err).Uint("n", n).Str("engine", r.Engine).
				Stringer("config", r.Config).Msg("results-db-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// ReadResultsDB returns the stored results for engine, ordered by m, n, k.
func ReadResultsDB(db *sql.DB, engine string) ([]ConfigResult, error) {
	rows, err := db.Query(`SELECT m, n, k, runs, avg_time, avg_states_visited,
		time_ci95, states_ci95, max_wins, min_wins, draws
		FROM experiment_results WHERE engine = ? ORDER BY m, n, k`, engine)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ConfigResult
	for rows.Next() {
		r := ConfigResult{Job: Job{Engine: engine, Index: len(out)}}
		err := rows.Scan(&r.Config.M, &r.Config.N, &r.Config.K, &r.Runs, &r.AvgTime,
			&r.AvgStates, &r.TimeCI, &r.StatesCI, &r.MaxWins, &r.MinWins, &r.Draws)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
