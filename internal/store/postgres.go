package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool. Records are JSONB documents;
// patches are merged with the jsonb || operator in a single statement.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS discovery_jobs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'pending',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS business_leads (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL DEFAULT '',
	lead_score INTEGER NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_discovery_jobs_status ON discovery_jobs(status);
CREATE INDEX IF NOT EXISTS idx_business_leads_score ON business_leads(lead_score DESC, created_at);
CREATE INDEX IF NOT EXISTS idx_business_leads_job_id ON business_leads(job_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	job := newJob(search)

	data, err := json.Marshal(job)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal job")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO discovery_jobs (id, status, data, created_at) VALUES ($1, $2, $3, $4)`,
		job.ID, string(job.Status), data, job.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}
	return job, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*model.DiscoveryJob, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM discovery_jobs WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: job %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", id)
	}
	return decodeJob(data)
}

func (s *PostgresStore) UpdateJob(ctx context.Context, id string, patch model.JobPatch) (*model.DiscoveryJob, error) {
	doc, err := json.Marshal(jobPatchDoc(patch))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal job patch")
	}

	var status *string
	if patch.Status != nil {
		st := string(*patch.Status)
		status = &st
	}

	var data []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE discovery_jobs SET data = data || $1::jsonb, status = COALESCE($2, status)
		 WHERE id = $3 RETURNING data`,
		doc, status, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update job %s", id)
	}
	return decodeJob(data)
}

func (s *PostgresStore) ListActiveJobs(ctx context.Context) ([]model.DiscoveryJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM discovery_jobs WHERE status IN ($1, $2) ORDER BY created_at`,
		string(model.JobStatusPending), string(model.JobStatusRunning),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list active jobs")
	}
	defer rows.Close()

	var jobs []model.DiscoveryJob
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		job, err := decodeJob(data)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: iterate jobs")
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.BusinessLead) (*model.BusinessLead, error) {
	l := prepareLead(lead)

	data, err := json.Marshal(l)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO business_leads (id, job_id, lead_score, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.JobID, l.LeadScore, data, l.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	return l, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.BusinessLead, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM business_leads WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return decodeLead(data)
}

func (s *PostgresStore) UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.BusinessLead, error) {
	doc, err := json.Marshal(leadPatchDoc(patch))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal lead patch")
	}

	var data []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE business_leads SET data = data || $1::jsonb WHERE id = $2 RETURNING data`,
		doc, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update lead %s", id)
	}
	return decodeLead(data)
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.BusinessLead, error) {
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT data FROM business_leads
		 WHERE ($1 = '' OR job_id = $1) AND lead_score >= $2
		 ORDER BY lead_score DESC, created_at ASC
		 LIMIT $3`,
		filter.JobID, filter.MinScore, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.BusinessLead
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		lead, err := decodeLead(data)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM business_leads WHERE id = $1`, id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	return tag.RowsAffected() > 0, nil
}

func decodeJob(data []byte) (*model.DiscoveryJob, error) {
	var job model.DiscoveryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal job")
	}
	return &job, nil
}

func decodeLead(data []byte) (*model.BusinessLead, error) {
	var lead model.BusinessLead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal lead")
	}
	return &lead, nil
}
