package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Frequency is the scheduling interval attached to a checklist template.
type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiweekly   Frequency = "biweekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// IsValid reports whether the frequency is a recognized value. Unrecognized
// frequencies are still scorable; scheduling falls back to monthly.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual:
		return true
	}
	return false
}

// ItemType discriminates the checkable item variants.
type ItemType string

const (
	ItemBoolean  ItemType = "boolean"
	ItemNumber   ItemType = "number"
	ItemSelect   ItemType = "select"
	ItemTextarea ItemType = "textarea"
	ItemFile     ItemType = "file"
)

// Rule is the closed set of per-type pass rules. Each variant carries only
// the data its evaluation needs; the scoring engine type-switches over it.
type Rule interface {
	isRule()
}

// BooleanRule passes only on a strict true answer.
type BooleanRule struct{}

// NumberRule passes when the answer falls inside Range. A nil Range means any
// numeric answer passes.
type NumberRule struct {
	Range *NumberRange
}

// NumberRange is an inclusive [Min, Max] interval.
type NumberRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SelectRule passes when the answer matches an acceptable option.
type SelectRule struct {
	Options []SelectOption
}

// SelectOption is one enumerated choice. Acceptable defaults to true unless
// the template marks it false explicitly.
type SelectOption struct {
	Value      string `json:"value"`
	Label      string `json:"label"`
	Acceptable bool   `json:"acceptable"`
}

// UnmarshalJSON defaults Acceptable to true when the field is absent.
func (o *SelectOption) UnmarshalJSON(data []byte) error {
	type alias SelectOption
	aux := alias{Acceptable: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = SelectOption(aux)
	return nil
}

// TextareaRule passes whenever the item is answered.
type TextareaRule struct{}

// FileRule passes whenever the item is answered.
type FileRule struct{}

func (BooleanRule) isRule()  {}
func (NumberRule) isRule()   {}
func (SelectRule) isRule()   {}
func (TextareaRule) isRule() {}
func (FileRule) isRule()     {}

// Item is one checkable unit of a template section.
type Item struct {
	ID    string
	Type  ItemType
	Check string
	// Rule is nil when the serialized type was not recognized; template
	// validation surfaces that as an invalid template rather than a JSON
	// decode failure, so legacy rows can still be loaded and inspected.
	Rule Rule
}

// itemEnvelope is the wire shape items use in template sections JSON.
type itemEnvelope struct {
	ID      string         `json:"id"`
	Type    ItemType       `json:"type"`
	Check   string         `json:"check"`
	Range   *NumberRange   `json:"range,omitempty"`
	Options []SelectOption `json:"options,omitempty"`
}

// UnmarshalJSON decodes the flat wire shape into the tagged Rule variant.
func (i *Item) UnmarshalJSON(data []byte) error {
	var env itemEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	i.ID = env.ID
	i.Type = env.Type
	i.Check = env.Check
	switch env.Type {
	case ItemBoolean:
		i.Rule = BooleanRule{}
	case ItemNumber:
		i.Rule = NumberRule{Range: env.Range}
	case ItemSelect:
		i.Rule = SelectRule{Options: env.Options}
	case ItemTextarea:
		i.Rule = TextareaRule{}
	case ItemFile:
		i.Rule = FileRule{}
	default:
		i.Rule = nil
	}
	return nil
}

// MarshalJSON writes the flat wire shape back out.
func (i Item) MarshalJSON() ([]byte, error) {
	env := itemEnvelope{ID: i.ID, Type: i.Type, Check: i.Check}
	switch rule := i.Rule.(type) {
	case NumberRule:
		env.Range = rule.Range
	case SelectRule:
		env.Options = rule.Options
	}
	return json.Marshal(env)
}

// Section is a named, ordered grouping of items.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// ChecklistTemplate identifies one inspection type for an equipment category.
// Templates are authored once (seed or admin tooling) and treated as
// immutable during scoring; versioning happens by re-importing with a new
// version string.
type ChecklistTemplate struct {
	ID                string    `json:"id"`
	EquipmentType     string    `json:"equipmentType"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Version           string    `json:"version"`
	Frequency         Frequency `json:"frequency"`
	EstimatedDuration int       `json:"estimatedDuration,omitempty"`
	Sections          []Section `json:"sections"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty"`
}

// TotalItems counts the items across all sections.
func (t *ChecklistTemplate) TotalItems() int {
	total := 0
	for _, s := range t.Sections {
		total += len(s.Items)
	}
	return total
}
