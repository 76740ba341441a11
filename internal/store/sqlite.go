package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Records are kept
// as JSON documents; patches are merged with json_patch in a single
// statement.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS discovery_jobs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'pending',
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS business_leads (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL DEFAULT '',
	lead_score INTEGER NOT NULL,
	data       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_discovery_jobs_status ON discovery_jobs(status);
CREATE INDEX IF NOT EXISTS idx_business_leads_score ON business_leads(lead_score DESC, created_at);
CREATE INDEX IF NOT EXISTS idx_business_leads_job_id ON business_leads(job_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateJob(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	job := newJob(search)

	data, err := json.Marshal(job)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal job")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO discovery_jobs (id, status, data, created_at) VALUES (?, ?, ?, ?)`,
		job.ID, string(job.Status), string(data), job.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert job")
	}
	return job, nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*model.DiscoveryJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM discovery_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: job %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", id)
	}
	return job, nil
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, id string, patch model.JobPatch) (*model.DiscoveryJob, error) {
	doc, err := json.Marshal(jobPatchDoc(patch))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal job patch")
	}

	var status *string
	if patch.Status != nil {
		st := string(*patch.Status)
		status = &st
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE discovery_jobs SET data = json_patch(data, ?), status = COALESCE(?, status)
		 WHERE id = ? RETURNING data`,
		string(doc), status, id,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update job %s", id)
	}
	return job, nil
}

func (s *SQLiteStore) ListActiveJobs(ctx context.Context) ([]model.DiscoveryJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM discovery_jobs WHERE status IN (?, ?) ORDER BY created_at`,
		string(model.JobStatusPending), string(model.JobStatusRunning),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list active jobs")
	}
	defer rows.Close()

	var jobs []model.DiscoveryJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: iterate jobs")
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.BusinessLead) (*model.BusinessLead, error) {
	l := prepareLead(lead)

	data, err := json.Marshal(l)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO business_leads (id, job_id, lead_score, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.JobID, l.LeadScore, string(data), l.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	return l, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.BusinessLead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM business_leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get lead %s", id)
	}
	return lead, nil
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.BusinessLead, error) {
	doc, err := json.Marshal(leadPatchDoc(patch))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal lead patch")
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE business_leads SET data = json_patch(data, ?) WHERE id = ? RETURNING data`,
		string(doc), id,
	)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update lead %s", id)
	}
	return lead, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.BusinessLead, error) {
	limit := -1
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM business_leads
		 WHERE (? = '' OR job_id = ?) AND lead_score >= ?
		 ORDER BY lead_score DESC, created_at ASC
		 LIMIT ?`,
		filter.JobID, filter.JobID, filter.MinScore, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.BusinessLead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM business_leads WHERE id = ?`, id)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanJob(row scannable) (*model.DiscoveryJob, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var job model.DiscoveryJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, eris.Wrap(err, "unmarshal job")
	}
	return &job, nil
}

func scanLead(row scannable) (*model.BusinessLead, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var lead model.BusinessLead
	if err := json.Unmarshal([]byte(data), &lead); err != nil {
		return nil, eris.Wrap(err, "unmarshal lead")
	}
	return &lead, nil
}
