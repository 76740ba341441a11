package store

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// MemoryStore implements Store in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*model.DiscoveryJob
	leads map[string]*model.BusinessLead
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]*model.DiscoveryJob),
		leads: make(map[string]*model.BusinessLead),
	}
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }
func (s *MemoryStore) Close() error                    { return nil }

func (s *MemoryStore) CreateJob(_ context.Context, search model.SearchConfig) (*model.DiscoveryJob, error) {
	job := newJob(search)

	s.mu.Lock()
	s.jobs[job.ID] = job.Clone()
	s.mu.Unlock()

	return job, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*model.DiscoveryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: job %s", id)
	}
	return job.Clone(), nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, id string, patch model.JobPatch) (*model.DiscoveryJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	updated := job.Clone()
	patch.Apply(updated)
	s.jobs[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) ListActiveJobs(_ context.Context) ([]model.DiscoveryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.DiscoveryJob
	for _, job := range s.jobs {
		if !job.Status.IsTerminal() {
			out = append(out, *job.Clone())
		}
	}
	sortJobs(out)
	return out, nil
}

func (s *MemoryStore) CreateLead(_ context.Context, lead *model.BusinessLead) (*model.BusinessLead, error) {
	l := prepareLead(lead)

	s.mu.Lock()
	s.leads[l.ID] = l.Clone()
	s.mu.Unlock()

	return l, nil
}

func (s *MemoryStore) GetLead(_ context.Context, id string) (*model.BusinessLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "memory: lead %s", id)
	}
	return lead.Clone(), nil
}

func (s *MemoryStore) UpdateLead(_ context.Context, id string, patch model.LeadPatch) (*model.BusinessLead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	updated := lead.Clone()
	patch.Apply(updated)
	s.leads[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) ListLeads(_ context.Context, filter LeadFilter) ([]model.BusinessLead, error) {
	s.mu.RLock()
	leads := make([]model.BusinessLead, 0, len(s.leads))
	for _, l := range s.leads {
		leads = append(leads, *l.Clone())
	}
	s.mu.RUnlock()

	sortLeads(leads)
	return applyFilter(leads, filter), nil
}

func (s *MemoryStore) DeleteLead(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return false, nil
	}
	delete(s.leads, id)
	return true, nil
}
