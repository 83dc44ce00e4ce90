package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// MemoryStore is an in-memory stand-in for the Postgres repositories. It
// backs the completion-flow tests and ad-hoc drivers so the orchestration
// can run without a database; it implements the store interfaces the
// inspection service accepts.
type MemoryStore struct {
	mu         sync.Mutex
	nextID     int64
	checklists map[int64]*model.Checklist
	templates  map[string]*model.ChecklistTemplate
	equipments map[string]*model.Equipment
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		checklists: make(map[int64]*model.Checklist),
		templates:  make(map[string]*model.ChecklistTemplate),
		equipments: make(map[string]*model.Equipment),
	}
}

// PutTemplate stores a template.
func (m *MemoryStore) PutTemplate(tpl *model.ChecklistTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tpl
	m.templates[tpl.ID] = &cp
}

// PutEquipment stores an equipment.
func (m *MemoryStore) PutEquipment(eq *model.Equipment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *eq
	m.equipments[eq.ID] = &cp
}

// Get returns a checklist by id.
func (m *MemoryStore) Get(_ context.Context, id int64) (*model.Checklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[id]
	if !ok {
		return nil, fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

// Create assigns an id and stores the checklist.
func (m *MemoryStore) Create(_ context.Context, c *model.Checklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.checklists[c.ID] = &cp
	return nil
}

// Start marks the checklist in progress, keeping the first start instant.
func (m *MemoryStore) Start(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[id]
	if !ok {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	c.Status = model.StatusInProgress
	if c.StartedAt == nil {
		c.StartedAt = &at
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateProgress overwrites responses, status and notes.
func (m *MemoryStore) UpdateProgress(_ context.Context, id int64, status model.ChecklistStatus, responses model.ResponseSet, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[id]
	if !ok {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	c.Status = status
	c.Responses = responses
	if notes != "" {
		c.InspectorNotes = notes
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete applies an engine result to the stored checklist.
func (m *MemoryStore) Complete(_ context.Context, id int64, responses model.ResponseSet, notes string, res *model.ScoreResult, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[id]
	if !ok {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	c.Responses = responses
	if notes != "" {
		c.InspectorNotes = notes
	}
	c.ApplyResult(res, completedAt)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Templates returns a template-store view of the memory store.
func (m *MemoryStore) Templates() *MemoryTemplateStore { return &MemoryTemplateStore{store: m} }

// Equipments returns an equipment-store view of the memory store.
func (m *MemoryStore) Equipments() *MemoryEquipmentStore { return &MemoryEquipmentStore{store: m} }

// MemoryTemplateStore adapts MemoryStore to the template-store interface.
type MemoryTemplateStore struct {
	store *MemoryStore
}

// Get returns a template by id.
func (s *MemoryTemplateStore) Get(_ context.Context, id string) (*model.ChecklistTemplate, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	tpl, ok := s.store.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	cp := *tpl
	return &cp, nil
}

// MemoryEquipmentStore adapts MemoryStore to the equipment-store interface.
type MemoryEquipmentStore struct {
	store *MemoryStore
}

// Get returns an equipment by id.
func (s *MemoryEquipmentStore) Get(_ context.Context, id string) (*model.Equipment, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	eq, ok := s.store.equipments[id]
	if !ok {
		return nil, fmt.Errorf("equipment %s: %w", id, ErrNotFound)
	}
	cp := *eq
	return &cp, nil
}

// UpdateMaintenanceDates records the last and next maintenance dates.
func (s *MemoryEquipmentStore) UpdateMaintenanceDates(_ context.Context, id string, last, next time.Time) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	eq, ok := s.store.equipments[id]
	if !ok {
		return fmt.Errorf("equipment %s: %w", id, ErrNotFound)
	}
	eq.LastMaintenanceDate = &last
	eq.NextMaintenanceDate = &next
	eq.UpdatedAt = time.Now().UTC()
	return nil
}
