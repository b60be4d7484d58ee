// Package storage persists simulation runs. The SQLite store keeps runs,
// trajectory frames, and final metrics queryable after the fact; the
// stream writer appends frames to a compressed JSON-lines file for cheap
// bulk capture.
package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/crowddynamics/crowddynamics/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	config     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS frames (
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	step        INTEGER NOT NULL,
	time        REAL NOT NULL,
	agent_id    INTEGER NOT NULL,
	x           REAL NOT NULL,
	y           REAL NOT NULL,
	vx          REAL NOT NULL,
	vy          REAL NOT NULL,
	radius      REAL NOT NULL,
	orientation REAL
);
CREATE INDEX IF NOT EXISTS frames_run_agent ON frames(run_id, agent_id, step);
CREATE TABLE IF NOT EXISTS metrics (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	value  REAL NOT NULL
);
`

// flushEvery is the number of buffered frames that triggers a flush. One
// transaction per flush keeps insert overhead off the simulation loop.
const flushEvery = 64

// Store records runs into a SQLite database. Frames are buffered and
// written in batches; Close flushes whatever remains. Implements
// sim.FrameRecorder for the active run.
type Store struct {
	db    *sql.DB
	runID int64
	buf   []*sim.Frame
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return &Store{db: db}, nil
}

// BeginRun inserts a run row and directs subsequent frames to it. config
// carries the full scenario document for later reproduction.
func (s *Store) BeginRun(name string, seed int64, config string) error {
	res, err := s.db.Exec(
		"INSERT INTO runs (name, seed, started_at, config) VALUES (?, ?, ?, ?)",
		name, seed, time.Now().UTC().Format(time.RFC3339), config,
	)
	if err != nil {
		return errors.Wrap(err, "inserting run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "reading run id")
	}
	s.runID = id
	return nil
}

// RunID returns the ID of the active run, 0 before BeginRun.
func (s *Store) RunID() int64 {
	return s.runID
}

// RecordFrame buffers one frame for the active run.
func (s *Store) RecordFrame(f *sim.Frame) error {
	if s.runID == 0 {
		return errors.New("no active run; call BeginRun first")
	}
	s.buf = append(s.buf, f)
	if len(s.buf) >= flushEvery {
		return s.Flush()
	}
	return nil
}

// Flush writes all buffered frames in one transaction.
func (s *Store) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning flush transaction")
	}
	stmt, err := tx.Prepare(
		"INSERT INTO frames (run_id, step, time, agent_id, x, y, vx, vy, radius, orientation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "preparing frame insert")
	}
	defer stmt.Close()

	for _, f := range s.buf {
		for k, id := range f.IDs {
			var orientation interface{}
			if f.Orientation != nil {
				orientation = f.Orientation[k]
			}
			if _, err := stmt.Exec(s.runID, f.Step, f.Time, id,
				f.X[k], f.Y[k], f.VX[k], f.VY[k], f.Radius[k], orientation); err != nil {
				tx.Rollback()
				return errors.Wrap(err, "inserting frame row")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing flush")
	}
	s.buf = s.buf[:0]
	return nil
}

// FinishRun flushes pending frames and stores the final metrics of the
// active run.
func (s *Store) FinishRun(m *sim.Metrics) error {
	if s.runID == 0 {
		return errors.New("no active run")
	}
	if err := s.Flush(); err != nil {
		return err
	}

	rows := map[string]float64{
		"spawned_agents":       float64(m.SpawnedAgents),
		"evacuated_agents":     float64(m.EvacuatedAgents),
		"steps":                float64(m.StepCount),
		"sim_time":             m.SimTime,
		"mean_evacuation_time": m.MeanEvacuationTime(),
		"median_evac_time":     m.EvacuationTimeQuantile(0.5),
		"p90_evac_time":        m.EvacuationTimeQuantile(0.9),
		"p99_evac_time":        m.EvacuationTimeQuantile(0.99),
		"mean_speed":           m.MeanSpeed(),
		"flow_rate":            m.FlowRate(),
		"peak_density":         m.PeakDensity,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning metrics transaction")
	}
	for name, value := range rows {
		if _, err := tx.Exec(
			"INSERT INTO metrics (run_id, name, value) VALUES (?, ?, ?)",
			s.runID, name, value); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "inserting metric %s", name)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing metrics")
	}
	s.runID = 0
	return nil
}

// Close flushes any buffered frames and closes the database.
func (s *Store) Close() error {
	var flushErr error
	if s.runID != 0 {
		flushErr = s.Flush()
	}
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "closing database")
	}
	return flushErr
}

// RunInfo summarizes one stored run.
type RunInfo struct {
	ID        int64
	Name      string
	Seed      int64
	StartedAt string
}

// Runs lists the stored runs, newest first.
func (s *Store) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query("SELECT id, name, seed, started_at FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		if err := rows.Scan(&r.ID, &r.Name, &r.Seed, &r.StartedAt); err != nil {
			return nil, errors.Wrap(err, "scanning run row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRunID returns the ID of the most recent run, or an error when the
// store is empty.
func (s *Store) LatestRunID() (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM runs ORDER BY id DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.New("store holds no runs")
	}
	if err != nil {
		return 0, errors.Wrap(err, "querying latest run")
	}
	return id, nil
}

// Frames reconstructs the recorded frames of a run in step order.
func (s *Store) Frames(runID int64) ([]*sim.Frame, error) {
	rows, err := s.db.Query(
		"SELECT step, time, agent_id, x, y, vx, vy, radius, orientation FROM frames WHERE run_id = ? ORDER BY step, agent_id",
		runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying frames")
	}
	defer rows.Close()

	var out []*sim.Frame
	var cur *sim.Frame
	for rows.Next() {
		var step, agentID int
		var t, x, y, vx, vy, radius float64
		var orientation sql.NullFloat64
		if err := rows.Scan(&step, &t, &agentID, &x, &y, &vx, &vy, &radius, &orientation); err != nil {
			return nil, errors.Wrap(err, "scanning frame row")
		}
		if cur == nil || cur.Step != step {
			cur = &sim.Frame{Step: step, Time: t}
			out = append(out, cur)
		}
		cur.IDs = append(cur.IDs, agentID)
		cur.X = append(cur.X, x)
		cur.Y = append(cur.Y, y)
		cur.VX = append(cur.VX, vx)
		cur.VY = append(cur.VY, vy)
		cur.Radius = append(cur.Radius, radius)
		if orientation.Valid {
			cur.Orientation = append(cur.Orientation, orientation.Float64)
		}
	}
	return out, rows.Err()
}
