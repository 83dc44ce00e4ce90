package model

import (
	"time"
)

// ChecklistStatus describes the checklist lifecycle.
type ChecklistStatus string

const (
	StatusDraft      ChecklistStatus = "draft"
	StatusPending    ChecklistStatus = "pending"
	StatusInProgress ChecklistStatus = "in_progress"
	StatusCompleted  ChecklistStatus = "completed"
	StatusCancelled  ChecklistStatus = "cancelled"
)

// IsValid reports whether the status is a recognized value.
func (s ChecklistStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ChecklistStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks the lifecycle edges:
// draft -> pending -> in_progress -> completed | cancelled.
// Cancellation is allowed from any non-terminal state; nothing leaves a
// terminal state.
func (s ChecklistStatus) CanTransitionTo(next ChecklistStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusPending:
		return s == StatusDraft
	case StatusInProgress:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusInProgress
	case StatusCancelled:
		return true
	}
	return false
}

// FinalStatus is the categorical classification of a completed inspection.
type FinalStatus string

const (
	FinalConforme  FinalStatus = "conforme"
	FinalAVerifier FinalStatus = "à_vérifier"
	FinalCritique  FinalStatus = "critique"
	FinalEnAttente FinalStatus = "en_attente"
)

// Response is the recorded answer for one item. Unanswered items are absent
// from the ResponseSet entirely, never present with a nil value; the
// distinction drives the completed vs. total counts.
type Response struct {
	Value any    `json:"value"`
	Note  string `json:"note,omitempty"`
}

// ResponseSet maps item ids to responses.
type ResponseSet map[string]Response

// Merge overlays other on top of r, mirroring how partial saves accumulate
// answers before completion.
func (r ResponseSet) Merge(other ResponseSet) ResponseSet {
	merged := make(ResponseSet, len(r)+len(other))
	for id, resp := range r {
		merged[id] = resp
	}
	for id, resp := range other {
		merged[id] = resp
	}
	return merged
}

// ScoreResult is what the scoring engine returns for one completed checklist.
type ScoreResult struct {
	TotalItems     int         `json:"totalItems"`
	CompletedItems int         `json:"completedItems"`
	PassedItems    int         `json:"passedItems"`
	FailedItems    int         `json:"failedItems"`
	Score          float64     `json:"score"`
	FinalStatus    FinalStatus `json:"finalStatus"`
	NextCheckDate  time.Time   `json:"nextCheckDate"`
}

// Checklist is one inspection instance of a template against an equipment.
type Checklist struct {
	ID             int64           `json:"id"`
	EquipmentID    string          `json:"equipmentId"`
	TemplateID     string          `json:"templateId"`
	InspectorID    string          `json:"inspectorId"`
	InspectorName  string          `json:"inspectorName"`
	ScheduledDate  time.Time       `json:"scheduledDate"`
	StartedAt      *time.Time      `json:"startedAt,omitempty"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
	Status         ChecklistStatus `json:"status"`
	Responses      ResponseSet     `json:"responses"`
	TotalItems     int             `json:"totalItems"`
	CompletedItems int             `json:"completedItems"`
	PassedItems    int             `json:"passedItems"`
	FailedItems    int             `json:"failedItems"`
	Score          *float64        `json:"score,omitempty"`
	FinalStatus    FinalStatus     `json:"finalStatus,omitempty"`
	NextCheckDate  *time.Time      `json:"nextCheckDate,omitempty"`
	InspectorNotes string          `json:"inspectorNotes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ApplyResult copies an engine result onto the checklist record.
func (c *Checklist) ApplyResult(res *ScoreResult, completedAt time.Time) {
	score := res.Score
	next := res.NextCheckDate
	c.Status = StatusCompleted
	c.CompletedAt = &completedAt
	c.TotalItems = res.TotalItems
	c.CompletedItems = res.CompletedItems
	c.PassedItems = res.PassedItems
	c.FailedItems = res.FailedItems
	c.Score = &score
	c.FinalStatus = res.FinalStatus
	c.NextCheckDate = &next
}
