// Package store persists discovery jobs and business leads.
package store

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// ErrNotFound is returned by Get operations for missing records.
var ErrNotFound = eris.New("not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	JobID    string `json:"jobId,omitempty"`
	MinScore int    `json:"minScore,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for jobs and leads. Every
// implementation applies updates atomically per record: a reader never
// observes a partially applied patch.
//
// Updates of a missing record return (nil, nil).
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, search model.SearchConfig) (*model.DiscoveryJob, error)
	GetJob(ctx context.Context, id string) (*model.DiscoveryJob, error)
	UpdateJob(ctx context.Context, id string, patch model.JobPatch) (*model.DiscoveryJob, error)
	ListActiveJobs(ctx context.Context) ([]model.DiscoveryJob, error)

	// Leads
	CreateLead(ctx context.Context, lead *model.BusinessLead) (*model.BusinessLead, error)
	GetLead(ctx context.Context, id string) (*model.BusinessLead, error)
	UpdateLead(ctx context.Context, id string, patch model.LeadPatch) (*model.BusinessLead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.BusinessLead, error)
	DeleteLead(ctx context.Context, id string) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// sortLeads orders leads by score descending, oldest first within a score.
func sortLeads(leads []model.BusinessLead) {
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].LeadScore != leads[j].LeadScore {
			return leads[i].LeadScore > leads[j].LeadScore
		}
		return leads[i].CreatedAt.Before(leads[j].CreatedAt)
	})
}

// sortJobs orders jobs oldest first.
func sortJobs(jobs []model.DiscoveryJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}

// applyFilter drops leads not matching f and applies the limit. leads must
// already be sorted.
func applyFilter(leads []model.BusinessLead, f LeadFilter) []model.BusinessLead {
	out := leads[:0]
	for _, l := range leads {
		if f.JobID != "" && l.JobID != f.JobID {
			continue
		}
		if l.LeadScore < f.MinScore {
			continue
		}
		out = append(out, l)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
