package runstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

var ErrRunNotFound = fmt.Errorf("workflow run not found")

type Config struct {
	Enabled bool   `env:"RUNSTORE_ENABLED" envDefault:"true"`
	Path    string `env:"RUNSTORE_PATH" envDefault:"workflow-runs.db"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Run struct {
	Id        int64  `db:"id"`
	Name      string `db:"name"`
	State     string `db:"state"`
	Detail    string `db:"detail"`
	CreatedTs int64  `db:"created_ts"`
	UpdatedTs int64  `db:"updated_ts"`
}

type Transition struct {
	Id        int64  `db:"id"`
	RunId     int64  `db:"run_id"`
	FromState string `db:"from_state"`
	ToState   string `db:"to_state"`
	Detail    string `db:"detail"`
	CreatedTs int64  `db:"created_ts"`
}

// Store records workflow runs and their state transitions. It is an audit
// trail, not a coordination mechanism; losing it never affects a run.
type Store interface {
	CreateRun(ctx context.Context, name string) (int64, error)
	RecordTransition(ctx context.Context, runId int64, fromState, toState, detail string) error
	CompleteRun(ctx context.Context, runId int64, state, detail string) error
	GetRun(ctx context.Context, runId int64) (*Run, error)
	ListTransitions(ctx context.Context, runId int64) ([]Transition, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	state TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_ts INTEGER NOT NULL,
	updated_ts INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS workflow_transitions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL REFERENCES workflow_runs(id),
	from_state TEXT NOT NULL,
	to_state TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workflow_transitions_run_id ON workflow_transitions(run_id);
`

type SqliteStore struct {
	db *sqlx.DB
}

var _ Store = &SqliteStore{}

func NewSqliteStore(cfg *Config) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open run store at %s", cfg.Path)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "failed to create run store schema")
	}
	return &SqliteStore{db: db}, nil
}

func NewStore(cfg *Config) (Store, error) {
	if !cfg.Enabled {
		log.Debugln("run store disabled")
		return &NopStore{}, nil
	}
	return NewSqliteStore(cfg)
}

func (s *SqliteStore) CreateRun(ctx context.Context, name string) (int64, error) {
	now := time.Now().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_runs (name, state, created_ts, updated_ts) VALUES (?, ?, ?, ?)`,
		name, "Init", now, now)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create run %s", name)
	}
	return result.LastInsertId()
}

func (s *SqliteStore) RecordTransition(ctx context.Context, runId int64, fromState, toState, detail string) error {
	now := time.Now().Unix()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workflow_transitions (run_id, from_state, to_state, detail, created_ts) VALUES (?, ?, ?, ?, ?)`,
		runId, fromState, toState, detail, now)
	if err != nil {
		return errors.Wrapf(err, "failed to record transition for run %d", runId)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE workflow_runs SET state = ?, updated_ts = ? WHERE id = ?`,
		toState, now, runId)
	if err != nil {
		return errors.Wrapf(err, "failed to update run %d state", runId)
	}
	return tx.Commit()
}

func (s *SqliteStore) CompleteRun(ctx context.Context, runId int64, state, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE workflow_runs SET state = ?, detail = ?, updated_ts = ? WHERE id = ?`,
		state, detail, time.Now().Unix(), runId)
	return errors.Wrapf(err, "failed to complete run %d", runId)
}

func (s *SqliteStore) GetRun(ctx context.Context, runId int64) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `SELECT * FROM workflow_runs WHERE id = ?`, runId)
	if err != nil {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, runId)
	}
	return &run, nil
}

func (s *SqliteStore) ListTransitions(ctx context.Context, runId int64) ([]Transition, error) {
	transitions := make([]Transition, 0)
	err := s.db.SelectContext(ctx, &transitions,
		`SELECT * FROM workflow_transitions WHERE run_id = ? ORDER BY id`, runId)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list transitions for run %d", runId)
	}
	return transitions, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// NopStore satisfies Store when persistence is turned off.
type NopStore struct{}

var _ Store = &NopStore{}

func (NopStore) CreateRun(context.Context, string) (int64, error) { return 0, nil }

func (NopStore) RecordTransition(context.Context, int64, string, string, string) error { return nil }

func (NopStore) CompleteRun(context.Context, int64, string, string) error { return nil }

func (NopStore) GetRun(context.Context, int64) (*Run, error) { return nil, ErrRunNotFound }

func (NopStore) ListTransitions(context.Context, int64) ([]Transition, error) { return nil, nil }

func (NopStore) Close() error { return nil }
