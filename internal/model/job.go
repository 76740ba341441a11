package model

import "time"

// JobStatus represents the lifecycle state of a discovery job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status is completed or failed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Progress holds per-stage completion percentages (0-100).
type Progress struct {
	GooglePlaces      int `json:"googlePlaces"`
	SocialMedia       int `json:"socialMedia"`
	OwnerVerification int `json:"ownerVerification"`
}

// Max returns the field-wise maximum of p and o.
func (p Progress) Max(o Progress) Progress {
	return Progress{
		GooglePlaces:      max(p.GooglePlaces, o.GooglePlaces),
		SocialMedia:       max(p.SocialMedia, o.SocialMedia),
		OwnerVerification: max(p.OwnerVerification, o.OwnerVerification),
	}
}

// DiscoveryJob is one execution of the discovery pipeline for a
// location and business type.
type DiscoveryJob struct {
	ID             string     `json:"id"`
	Location       string     `json:"location"`
	BusinessType   string     `json:"businessType"`
	Filters        Filters    `json:"filters"`
	Status         JobStatus  `json:"status"`
	Progress       Progress   `json:"progress"`
	TotalFound     int        `json:"totalFound"`
	QualifiedLeads int        `json:"qualifiedLeads"`
	HighScoreLeads int        `json:"highScoreLeads"`
	VerifiedOwners int        `json:"verifiedOwners"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Counters is the set of job outcome counters flushed together.
type Counters struct {
	TotalFound     int
	QualifiedLeads int
	HighScoreLeads int
	VerifiedOwners int
}

// JobPatch is a partial update to a DiscoveryJob. Nil fields are left
// unchanged.
type JobPatch struct {
	Status         *JobStatus
	Progress       *Progress
	TotalFound     *int
	QualifiedLeads *int
	HighScoreLeads *int
	VerifiedOwners *int
	Error          *string
	CompletedAt    *time.Time
}

// WithCounters sets all four counters on the patch.
func (p JobPatch) WithCounters(c Counters) JobPatch {
	p.TotalFound = &c.TotalFound
	p.QualifiedLeads = &c.QualifiedLeads
	p.HighScoreLeads = &c.HighScoreLeads
	p.VerifiedOwners = &c.VerifiedOwners
	return p
}

// Apply merges the patch into job in place.
func (p JobPatch) Apply(job *DiscoveryJob) {
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.Progress != nil {
		job.Progress = *p.Progress
	}
	if p.TotalFound != nil {
		job.TotalFound = *p.TotalFound
	}
	if p.QualifiedLeads != nil {
		job.QualifiedLeads = *p.QualifiedLeads
	}
	if p.HighScoreLeads != nil {
		job.HighScoreLeads = *p.HighScoreLeads
	}
	if p.VerifiedOwners != nil {
		job.VerifiedOwners = *p.VerifiedOwners
	}
	if p.Error != nil {
		job.Error = *p.Error
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		job.CompletedAt = &t
	}
}

// Clone returns a deep copy of the job.
func (j *DiscoveryJob) Clone() *DiscoveryJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
