package model

import (
	"time"
)

// AlertType names the condition that raised an alert.
type AlertType string

const (
	AlertHealthScoreLow    AlertType = "health_score_low"
	AlertMaintenanceDue    AlertType = "maintenance_due"
	AlertCriticalFailure   AlertType = "critical_failure"
	AlertInspectionOverdue AlertType = "inspection_overdue"
)

// AlertSeverity orders alerts for triage; critical sorts first.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// AlertStatus tracks the alert's handling lifecycle.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// Alert is a maintenance notification attached to an equipment, optionally
// linked to the checklist that triggered it.
type Alert struct {
	ID              string        `json:"id"`
	EquipmentID     string        `json:"equipmentId"`
	ChecklistID     *int64        `json:"checklistId,omitempty"`
	AlertType       AlertType     `json:"alertType"`
	Severity        AlertSeverity `json:"severity"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	Status          AlertStatus   `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	AcknowledgedAt  *time.Time    `json:"acknowledgedAt,omitempty"`
	ResolvedAt      *time.Time    `json:"resolvedAt,omitempty"`
	ResolutionNotes string        `json:"resolutionNotes,omitempty"`
}
