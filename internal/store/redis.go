package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

const (
	redisKeyPrefix  = "leadscout:"
	redisActiveJobs = redisKeyPrefix + "jobs:active"
	redisLeadIndex  = redisKeyPrefix + "leads:by_score"

	// maxTxRetries bounds optimistic-lock retries for patches.
	maxTxRetries = 10
)

func redisJobKey(id string) string  { return redisKeyPrefix + "job:" + id }
func redisLeadKey(id string) string { return redisKeyPrefix + "lead:" + id }

// RedisStore implements Store on Redis. Each record is one JSON string;
// leads are indexed in a sorted set by score and active jobs in a set.
// Patches use WATCH/MULTI so concurrent writers never interleave.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to the Redis server at url and verifies it with PING.
func NewRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "redis: parse url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "redis: ping")
	}
	return &RedisStore{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Migrate(_ context.Context) error { return nil }

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) CreateJob(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	job := newJob(search)

	data, err := json.Marshal(job)
	if err != nil {
		return nil, eris.Wrap(err, "redis: marshal job")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisJobKey(job.ID), data, 0)
		pipe.SAdd(ctx, redisActiveJobs, job.ID)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "redis: insert job")
	}
	return job, nil
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*model.DiscoveryJob, error) {
	data, err := s.client.Get(ctx, redisJobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, eris.Wrapf(ErrNotFound, "redis: job %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get job %s", id)
	}
	var job model.DiscoveryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, eris.Wrap(err, "redis: unmarshal job")
	}
	return &job, nil
}

func (s *RedisStore) UpdateJob(ctx context.Context, id string, patch model.JobPatch) (*model.DiscoveryJob, error) {
	key := redisJobKey(id)
	var updated *model.DiscoveryJob

	txf := func(tx *redis.Tx) error {
		updated = nil
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var job model.DiscoveryJob
		if err := json.Unmarshal(data, &job); err != nil {
			return eris.Wrap(err, "unmarshal job")
		}
		patch.Apply(&job)

		out, err := json.Marshal(&job)
		if err != nil {
			return eris.Wrap(err, "marshal job")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			if job.Status.IsTerminal() {
				pipe.SRem(ctx, redisActiveJobs, id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = &job
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, eris.Wrapf(err, "redis: update job %s", id)
	}
	return updated, nil
}

func (s *RedisStore) ListActiveJobs(ctx context.Context) ([]model.DiscoveryJob, error) {
	ids, err := s.client.SMembers(ctx, redisActiveJobs).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: list active jobs")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisJobKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: fetch active jobs")
	}

	var jobs []model.DiscoveryJob
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var job model.DiscoveryJob
		if err := json.Unmarshal([]byte(str), &job); err != nil {
			return nil, eris.Wrap(err, "redis: unmarshal job")
		}
		if !job.Status.IsTerminal() {
			jobs = append(jobs, job)
		}
	}
	sortJobs(jobs)
	return jobs, nil
}

func (s *RedisStore) CreateLead(ctx context.Context, lead *model.BusinessLead) (*model.BusinessLead, error) {
	l := prepareLead(lead)

	data, err := json.Marshal(l)
	if err != nil {
		return nil, eris.Wrap(err, "redis: marshal lead")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisLeadKey(l.ID), data, 0)
		pipe.ZAdd(ctx, redisLeadIndex, redis.Z{Score: float64(l.LeadScore), Member: l.ID})
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "redis: insert lead")
	}
	return l, nil
}

func (s *RedisStore) GetLead(ctx context.Context, id string) (*model.BusinessLead, error) {
	data, err := s.client.Get(ctx, redisLeadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, eris.Wrapf(ErrNotFound, "redis: lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get lead %s", id)
	}
	var lead model.BusinessLead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, eris.Wrap(err, "redis: unmarshal lead")
	}
	return &lead, nil
}

func (s *RedisStore) UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.BusinessLead, error) {
	key := redisLeadKey(id)
	var updated *model.BusinessLead

	txf := func(tx *redis.Tx) error {
		updated = nil
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}

		var lead model.BusinessLead
		if err := json.Unmarshal(data, &lead); err != nil {
			return eris.Wrap(err, "unmarshal lead")
		}
		patch.Apply(&lead)

		out, err := json.Marshal(&lead)
		if err != nil {
			return eris.Wrap(err, "marshal lead")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &lead
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, eris.Wrapf(err, "redis: update lead %s", id)
	}
	return updated, nil
}

func (s *RedisStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.BusinessLead, error) {
	ids, err := s.client.ZRevRangeByScore(ctx, redisLeadIndex, &redis.ZRangeBy{
		Min: strconv.Itoa(filter.MinScore),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: list leads")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisLeadKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: fetch leads")
	}

	leads := make([]model.BusinessLead, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var lead model.BusinessLead
		if err := json.Unmarshal([]byte(str), &lead); err != nil {
			return nil, eris.Wrap(err, "redis: unmarshal lead")
		}
		leads = append(leads, lead)
	}

	sortLeads(leads)
	return applyFilter(leads, filter), nil
}

func (s *RedisStore) DeleteLead(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisLeadKey(id))
		pipe.ZRem(ctx, redisLeadIndex, id)
		return nil
	})
	if err != nil {
		return false, eris.Wrapf(err, "redis: delete lead %s", id)
	}
	return del.Val() > 0, nil
}

// watch runs txf under WATCH on keys, retrying when another client wins the
// race.
func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}
