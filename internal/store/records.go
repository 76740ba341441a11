package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/lead-scout/internal/model"
)

// newJob builds a pending job for search.
func newJob(search model.SearchConfig) *model.DiscoveryJob {
	return &model.DiscoveryJob{
		ID:           uuid.New().String(),
		Location:     search.Location,
		BusinessType: search.BusinessType,
		Filters:      search.Filters,
		Status:       model.JobStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

// prepareLead copies lead and fills its ID and creation time when unset.
func prepareLead(lead *model.BusinessLead) *model.BusinessLead {
	l := lead.Clone()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.ScoreBreakdown == nil {
		l.ScoreBreakdown = model.ScoreBreakdown{}
	}
	return l
}

// jobPatchDoc renders a job patch as a JSON merge document keyed by the
// job's JSON field names.
func jobPatchDoc(p model.JobPatch) map[string]any {
	doc := make(map[string]any)
	if p.Status != nil {
		doc["status"] = *p.Status
	}
	if p.Progress != nil {
		doc["progress"] = *p.Progress
	}
	if p.TotalFound != nil {
		doc["totalFound"] = *p.TotalFound
	}
	if p.QualifiedLeads != nil {
		doc["qualifiedLeads"] = *p.QualifiedLeads
	}
	if p.HighScoreLeads != nil {
		doc["highScoreLeads"] = *p.HighScoreLeads
	}
	if p.VerifiedOwners != nil {
		doc["verifiedOwners"] = *p.VerifiedOwners
	}
	if p.Error != nil {
		doc["error"] = *p.Error
	}
	if p.CompletedAt != nil {
		doc["completedAt"] = *p.CompletedAt
	}
	return doc
}

// leadPatchDoc renders a lead patch as a JSON merge document.
func leadPatchDoc(p model.LeadPatch) map[string]any {
	doc := make(map[string]any)
	if p.OwnerName != nil {
		doc["ownerName"] = *p.OwnerName
	}
	if p.OwnerVerified != nil {
		doc["ownerVerified"] = *p.OwnerVerified
	}
	if p.OwnerContact != nil {
		doc["ownerContact"] = *p.OwnerContact
	}
	if p.PersonalHook != nil {
		doc["personalHook"] = *p.PersonalHook
	}
	if p.Outreach != nil {
		doc["outreachEmail"] = p.Outreach.Email
		doc["outreachDm"] = p.Outreach.DM
		doc["outreachSms"] = p.Outreach.SMS
	}
	if p.Flags != nil {
		doc["flags"] = p.Flags
	}
	return doc
}
