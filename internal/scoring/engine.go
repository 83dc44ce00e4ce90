// Package scoring evaluates completed checklist responses against their
// template and derives the score, the final status and the next due date.
//
// The engine is a pure computation: no I/O, no persistence, no notification
// side effects. Callers load the template and responses, invoke Score, and
// orchestrate whatever follows (persisting the result, raising a low-score
// alert, refreshing the equipment health score) themselves.
package scoring

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// Policy controls how an invalid answered response is handled.
type Policy int

const (
	// PolicyStrict aborts the whole Score call with an
	// InvalidResponseError. This is the default.
	PolicyStrict Policy = iota
	// PolicyLenient downgrades an item with an invalid response to unanswered
	// instead of failing the call. Template errors remain fatal.
	PolicyLenient
)

// Engine scores checklists. The zero value uses the strict policy; Engine
// values are immutable and safe for concurrent use.
type Engine struct {
	policy Policy
}

// New returns an engine with the strict response policy.
func New() *Engine {
	return &Engine{policy: PolicyStrict}
}

// NewWithPolicy returns an engine using the given response policy.
func NewWithPolicy(p Policy) *Engine {
	return &Engine{policy: p}
}

// Evaluation is the outcome of checking one item against its response.
type Evaluation struct {
	Answered bool
	// Passed is meaningful only when Answered is true; unanswered items are
	// excluded from the pass/fail tallies.
	Passed bool
}

// Score evaluates every item of the template against the response set and
// returns the aggregate result. completedAt is the reference instant for the
// next due date: "now" for interactive completions, a historical timestamp
// for backfill and import.
//
// Iteration is sections in order, then items in order; the order never
// changes the numbers but keeps error reporting and fixtures deterministic.
func (e *Engine) Score(tpl *model.ChecklistTemplate, responses model.ResponseSet, completedAt time.Time) (*model.ScoreResult, error) {
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	res := &model.ScoreResult{TotalItems: tpl.TotalItems()}
	for _, section := range tpl.Sections {
		for _, item := range section.Items {
			ev, err := e.EvaluateItem(item, responses)
			if err != nil {
				// Lenient downgrades response errors only; template defects
				// stay fatal under either policy.
				var respErr *InvalidResponseError
				if e.policy == PolicyLenient && errors.As(err, &respErr) {
					continue
				}
				return nil, err
			}
			if !ev.Answered {
				continue
			}
			res.CompletedItems++
			if ev.Passed {
				res.PassedItems++
			} else {
				res.FailedItems++
			}
		}
	}

	if res.CompletedItems > 0 {
		res.Score = round1(float64(res.PassedItems) / float64(res.CompletedItems) * 100)
	}
	res.FinalStatus = Classify(res.Score)
	res.NextCheckDate = NextDueDate(tpl.Frequency, completedAt)
	return res, nil
}

// EvaluateItem checks a single item against the response set. An item absent
// from the set is unanswered. An answered value incompatible with the item's
// type yields an InvalidResponseError regardless of policy; Score applies
// the policy.
func (e *Engine) EvaluateItem(item model.Item, responses model.ResponseSet) (Evaluation, error) {
	resp, answered := responses[item.ID]
	if !answered {
		return Evaluation{}, nil
	}

	switch rule := item.Rule.(type) {
	case model.BooleanRule:
		b, ok := resp.Value.(bool)
		if !ok {
			return Evaluation{}, &InvalidResponseError{ItemID: item.ID, ItemType: item.Type, Value: resp.Value}
		}
		return Evaluation{Answered: true, Passed: b}, nil

	case model.NumberRule:
		n, ok := numericValue(resp.Value)
		if !ok {
			return Evaluation{}, &InvalidResponseError{ItemID: item.ID, ItemType: item.Type, Value: resp.Value}
		}
		if rule.Range == nil {
			return Evaluation{Answered: true, Passed: true}, nil
		}
		passed := n >= rule.Range.Min && n <= rule.Range.Max
		return Evaluation{Answered: true, Passed: passed}, nil

	case model.SelectRule:
		// A value not matching any option is a plain fail, not an error:
		// templates may not enumerate every legacy value.
		v, ok := resp.Value.(string)
		if !ok {
			return Evaluation{}, &InvalidResponseError{ItemID: item.ID, ItemType: item.Type, Value: resp.Value}
		}
		for _, opt := range rule.Options {
			if opt.Value == v {
				return Evaluation{Answered: true, Passed: opt.Acceptable}, nil
			}
		}
		return Evaluation{Answered: true, Passed: false}, nil

	case model.TextareaRule, model.FileRule:
		// Presence is the whole check; content is not validated.
		return Evaluation{Answered: true, Passed: true}, nil

	default:
		return Evaluation{}, &InvalidTemplateError{Reason: "item " + item.ID + " has unknown type " + string(item.Type)}
	}
}

// Classify maps a rounded score onto the final status bands. Boundaries
// belong to the higher band: exactly 90 is conforme, exactly 75 is
// à_vérifier, exactly 50 is critique.
func Classify(score float64) model.FinalStatus {
	switch {
	case score >= 90:
		return model.FinalConforme
	case score >= 75:
		return model.FinalAVerifier
	case score >= 50:
		return model.FinalCritique
	default:
		return model.FinalEnAttente
	}
}

// ValidateTemplate checks the structural invariants scoring relies on:
// at least one section, no empty sections, template-wide unique item ids,
// and a recognized rule on every item.
func ValidateTemplate(tpl *model.ChecklistTemplate) error {
	if len(tpl.Sections) == 0 {
		return &InvalidTemplateError{TemplateID: tpl.ID, Reason: "no sections"}
	}
	seen := make(map[string]struct{}, tpl.TotalItems())
	for _, section := range tpl.Sections {
		if len(section.Items) == 0 {
			return &InvalidTemplateError{TemplateID: tpl.ID, Reason: "section " + section.Name + " has no items"}
		}
		for _, item := range section.Items {
			if item.ID == "" {
				return &InvalidTemplateError{TemplateID: tpl.ID, Reason: "item with empty id in section " + section.Name}
			}
			if _, dup := seen[item.ID]; dup {
				return &InvalidTemplateError{TemplateID: tpl.ID, Reason: "duplicate item id " + item.ID}
			}
			seen[item.ID] = struct{}{}
			if item.Rule == nil {
				return &InvalidTemplateError{TemplateID: tpl.ID, Reason: "item " + item.ID + " has unknown type " + string(item.Type)}
			}
		}
	}
	return nil
}

// numericValue accepts the numeric shapes JSON decoding and callers produce.
// Anything else is a type mismatch, never coerced.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// round1 rounds half-up to one decimal place. Classification happens on the
// rounded value, which governs the band boundaries at 90.0/75.0/50.0.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
