// Package seed bootstraps a database with equipment and template fixtures
// and a plausible inspection history. Historical checklists are scored
// through the real engine, never a re-derived copy of the rules.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/plant-healthcheck/planthealth/internal/health"
	"github.com/plant-healthcheck/planthealth/internal/inspection"
	"github.com/plant-healthcheck/planthealth/internal/model"
	"github.com/plant-healthcheck/planthealth/internal/repository"
	"github.com/plant-healthcheck/planthealth/internal/scoring"
	"github.com/plant-healthcheck/planthealth/internal/worker"
)

//go:embed data/*.json
var fixtures embed.FS

// historyWindow mirrors the worker's health-score window.
const historyWindow = 5

// inspectors are the sample identities historical checklists are attributed
// to; user management is outside this tool.
var inspectors = []struct {
	ID   string
	Name string
}{
	{"insp-001", "R. El Fassi"},
	{"insp-002", "M. Ouazzani"},
	{"insp-003", "J. Lahlou"},
}

// Seeder drives the full seeding pass.
type Seeder struct {
	equipments *repository.EquipmentRepository
	templates  *repository.TemplateRepository
	checklists *repository.ChecklistRepository
	alerts     *repository.AlertRepository
	service    *inspection.Service
	sweeper    *worker.Processor
	rng        *rand.Rand
	log        zerolog.Logger

	// Checklists is how many historical checklists to generate.
	Checklists int
}

// New constructs a seeder. seedValue fixes the RNG so repeated runs produce
// the same history.
func New(equipments *repository.EquipmentRepository, templates *repository.TemplateRepository, checklists *repository.ChecklistRepository, alerts *repository.AlertRepository, seedValue int64, log zerolog.Logger) *Seeder {
	engine := scoring.New()
	svc := inspection.NewService(checklists, templates, equipments, noopNotifier{}, engine, 0, log)
	return &Seeder{
		equipments: equipments,
		templates:  templates,
		checklists: checklists,
		alerts:     alerts,
		service:    svc,
		sweeper:    worker.NewProcessor(equipments, checklists, alerts, log),
		rng:        rand.New(rand.NewSource(seedValue)),
		log:        log,
		Checklists: 127,
	}
}

// Run executes the whole pass: fixtures, history, health scores, alerts.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.ImportEquipments(ctx); err != nil {
		return err
	}
	if err := s.ImportTemplates(ctx); err != nil {
		return err
	}
	if err := s.GenerateHistory(ctx); err != nil {
		return err
	}
	if err := s.RefreshHealthScores(ctx); err != nil {
		return err
	}
	raised, err := s.sweeper.SweepFleet(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	s.log.Info().Int("alerts", raised).Msg("seeding finished")
	return nil
}

// ImportEquipments upserts the embedded equipment fixtures.
func (s *Seeder) ImportEquipments(ctx context.Context) error {
	var payload struct {
		Equipments []model.Equipment `json:"equipments"`
	}
	if err := s.loadFixture("data/equipments.json", &payload); err != nil {
		return err
	}
	for i := range payload.Equipments {
		if err := s.equipments.Upsert(ctx, &payload.Equipments[i]); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(payload.Equipments)).Msg("equipments imported")
	return nil
}

// ImportTemplates upserts the embedded template fixtures, validating each
// one before it is stored.
func (s *Seeder) ImportTemplates(ctx context.Context) error {
	var payload struct {
		Templates []model.ChecklistTemplate `json:"templates"`
	}
	if err := s.loadFixture("data/templates.json", &payload); err != nil {
		return err
	}
	for i := range payload.Templates {
		tpl := &payload.Templates[i]
		if err := scoring.ValidateTemplate(tpl); err != nil {
			return fmt.Errorf("fixture template: %w", err)
		}
		if err := s.templates.Upsert(ctx, tpl); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(payload.Templates)).Msg("templates imported")
	return nil
}

// GenerateHistory creates completed checklists spread over the last six
// months. Each one goes through the normal lifecycle (pending, in_progress,
// completed) so the stored rows look exactly like interactively completed
// inspections.
func (s *Seeder) GenerateHistory(ctx context.Context) error {
	equipments, err := s.equipments.List(ctx)
	if err != nil {
		return err
	}
	templates, err := s.templates.ListActive(ctx, "")
	if err != nil {
		return err
	}
	byType := make(map[string]*model.ChecklistTemplate, len(templates))
	for i := range templates {
		byType[templates[i].EquipmentType] = &templates[i]
	}

	now := time.Now().UTC()
	sixMonthsAgo := now.AddDate(0, -6, 0)
	generated := 0

	for _, eq := range equipments {
		tpl, ok := byType[eq.Category]
		if !ok {
			continue
		}
		// Between 2 and 4 inspections per equipment.
		count := 2 + s.rng.Intn(3)
		for i := 0; i < count && generated < s.Checklists; i++ {
			inspector := inspectors[s.rng.Intn(len(inspectors))]
			completedAt := randomInstant(s.rng, sixMonthsAgo, now)
			startedAt := completedAt.Add(-time.Duration(tpl.EstimatedDuration) * time.Minute)

			c, err := s.service.Create(ctx, eq.ID, tpl.ID, inspector.ID, inspector.Name, completedAt)
			if err != nil {
				return fmt.Errorf("create checklist for %s: %w", eq.ID, err)
			}
			if err := s.service.Start(ctx, c.ID, startedAt); err != nil {
				return err
			}
			responses := s.generateResponses(tpl)
			if _, err := s.service.Complete(ctx, c.ID, responses, "", completedAt); err != nil {
				return fmt.Errorf("complete checklist %d: %w", c.ID, err)
			}
			generated++
		}
		if generated >= s.Checklists {
			break
		}
	}
	s.log.Info().Int("count", generated).Msg("historical checklists generated")
	return nil
}

// generateResponses produces plausible answers: booleans pass 85% of the
// time, numbers usually land in range, selects occasionally pick an
// unacceptable option, and textarea/file items are sometimes left
// unanswered.
func (s *Seeder) generateResponses(tpl *model.ChecklistTemplate) model.ResponseSet {
	responses := model.ResponseSet{}
	for _, section := range tpl.Sections {
		for _, item := range section.Items {
			switch rule := item.Rule.(type) {
			case model.BooleanRule:
				responses[item.ID] = model.Response{Value: s.rng.Float64() > 0.15}
			case model.NumberRule:
				if rule.Range != nil {
					span := rule.Range.Max - rule.Range.Min
					// Overshoot the range a little so some readings fail.
					v := rule.Range.Min + s.rng.Float64()*span*1.1
					responses[item.ID] = model.Response{Value: v}
				} else {
					responses[item.ID] = model.Response{Value: s.rng.Float64() * 100}
				}
			case model.SelectRule:
				opt := rule.Options[s.rng.Intn(len(rule.Options))]
				responses[item.ID] = model.Response{Value: opt.Value}
			case model.TextareaRule:
				if s.rng.Float64() > 0.7 {
					responses[item.ID] = model.Response{Value: "Observations normales, RAS"}
				}
			case model.FileRule:
				if s.rng.Float64() > 0.6 {
					responses[item.ID] = model.Response{Value: fmt.Sprintf("photo_%s_%d.jpg", item.ID, s.rng.Int63())}
				}
			}
		}
	}
	return responses
}

// RefreshHealthScores recomputes every equipment's health score from the
// generated history, synchronously rather than through the queue.
func (s *Seeder) RefreshHealthScores(ctx context.Context) error {
	equipments, err := s.equipments.List(ctx)
	if err != nil {
		return err
	}
	for _, eq := range equipments {
		scores, err := s.checklists.RecentScores(ctx, eq.ID, historyWindow)
		if err != nil {
			return err
		}
		if err := s.equipments.UpdateHealthScore(ctx, eq.ID, health.Compute(scores)); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(equipments)).Msg("health scores refreshed")
	return nil
}

func (s *Seeder) loadFixture(name string, v any) error {
	data, err := fixtures.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}

func randomInstant(rng *rand.Rand, from, to time.Time) time.Time {
	span := to.Sub(from)
	return from.Add(time.Duration(rng.Int63n(int64(span))))
}

// noopNotifier keeps seeding off the queue; health scores are refreshed
// synchronously afterwards and alerts come from the fleet sweep.
type noopNotifier struct{}

func (noopNotifier) LowScore(context.Context, string, int64, float64) error { return nil }
func (noopNotifier) HealthRefresh(context.Context, string) error            { return nil }
