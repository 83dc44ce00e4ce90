package scoring

import (
	"fmt"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// InvalidTemplateError reports a structurally malformed template. It is
// fatal: the completion flow must stop before any persistence.
type InvalidTemplateError struct {
	TemplateID string
	Reason     string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template %q: %s", e.TemplateID, e.Reason)
}

// InvalidResponseError reports an answered item whose value is incompatible
// with the item's declared type. It carries the item id and type so callers
// can surface the offending item.
type InvalidResponseError struct {
	ItemID   string
	ItemType model.ItemType
	Value    any
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response for item %q (type %s): value %v has type %T",
		e.ItemID, e.ItemType, e.Value, e.Value)
}
