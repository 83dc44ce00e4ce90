package model

import (
	"time"
)

// EquipmentStatus is the operational state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "operational"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentCritical    EquipmentStatus = "critical"
	EquipmentOffline     EquipmentStatus = "offline"
)

// CriticalityLevel ranks how much an equipment failure matters.
type CriticalityLevel string

const (
	CriticalityLow    CriticalityLevel = "low"
	CriticalityMedium CriticalityLevel = "medium"
	CriticalityHigh   CriticalityLevel = "high"
)

// Equipment is one tracked industrial asset.
type Equipment struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Type                 string           `json:"type"`
	Category             string           `json:"category"`
	Manufacturer         string           `json:"manufacturer,omitempty"`
	Model                string           `json:"model,omitempty"`
	SerialNumber         string           `json:"serialNumber,omitempty"`
	Building             string           `json:"building"`
	Zone                 string           `json:"zone"`
	Floor                string           `json:"floor,omitempty"`
	Status               EquipmentStatus  `json:"status"`
	HealthScore          int              `json:"healthScore"`
	InstallDate          *time.Time       `json:"installDate,omitempty"`
	LastMaintenanceDate  *time.Time       `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate  *time.Time       `json:"nextMaintenanceDate,omitempty"`
	MaintenanceFrequency Frequency        `json:"maintenanceFrequency,omitempty"`
	OperatingHours       int              `json:"operatingHours"`
	CriticalityLevel     CriticalityLevel `json:"criticalityLevel"`
	ResponsiblePerson    string           `json:"responsiblePerson,omitempty"`
	ContactEmail         string           `json:"contactEmail,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// IsOverdue reports whether the next scheduled maintenance date has passed.
func (e *Equipment) IsOverdue(now time.Time) bool {
	if e.NextMaintenanceDate == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return e.NextMaintenanceDate.Before(today)
}
