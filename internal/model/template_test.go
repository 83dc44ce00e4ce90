package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUnmarshalVariants(t *testing.T) {
	raw := `[
		{"id": "b1", "type": "boolean", "check": "Power on"},
		{"id": "n1", "type": "number", "check": "Pressure", "range": {"min": 2, "max": 9}},
		{"id": "n2", "type": "number", "check": "Reading"},
		{"id": "s1", "type": "select", "check": "State", "options": [
			{"value": "ok", "label": "OK"},
			{"value": "bad", "label": "Bad", "acceptable": false}
		]},
		{"id": "t1", "type": "textarea", "check": "Notes"},
		{"id": "f1", "type": "file", "check": "Photo"}
	]`

	var items []Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 6)

	assert.IsType(t, BooleanRule{}, items[0].Rule)

	num, ok := items[1].Rule.(NumberRule)
	require.True(t, ok)
	require.NotNil(t, num.Range)
	assert.Equal(t, 2.0, num.Range.Min)
	assert.Equal(t, 9.0, num.Range.Max)

	noRange, ok := items[2].Rule.(NumberRule)
	require.True(t, ok)
	assert.Nil(t, noRange.Range)

	sel, ok := items[3].Rule.(SelectRule)
	require.True(t, ok)
	require.Len(t, sel.Options, 2)
	// acceptable defaults to true when absent.
	assert.True(t, sel.Options[0].Acceptable)
	assert.False(t, sel.Options[1].Acceptable)

	assert.IsType(t, TextareaRule{}, items[4].Rule)
	assert.IsType(t, FileRule{}, items[5].Rule)
}

func TestItemUnmarshalUnknownType(t *testing.T) {
	var item Item
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x1", "type": "signature", "check": "Sign here"}`), &item))
	assert.Nil(t, item.Rule)
	assert.Equal(t, ItemType("signature"), item.Type)
}

func TestItemMarshalRoundTrip(t *testing.T) {
	original := Item{
		ID:    "s1",
		Type:  ItemSelect,
		Check: "State",
		Rule: SelectRule{Options: []SelectOption{
			{Value: "ok", Label: "OK", Acceptable: true},
			{Value: "bad", Label: "Bad", Acceptable: false},
		}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestTemplateSectionsDecode(t *testing.T) {
	raw := `{
		"id": "tpl-1",
		"equipmentType": "pump",
		"title": "Weekly",
		"version": "1.0",
		"frequency": "weekly",
		"sections": [
			{"name": "Main", "items": [
				{"id": "a", "type": "boolean", "check": "Runs"}
			]}
		]
	}`
	var tpl ChecklistTemplate
	require.NoError(t, json.Unmarshal([]byte(raw), &tpl))
	assert.Equal(t, FrequencyWeekly, tpl.Frequency)
	require.Len(t, tpl.Sections, 1)
	assert.Equal(t, 1, tpl.TotalItems())
}

func TestFrequencyIsValid(t *testing.T) {
	assert.True(t, FrequencyDaily.IsValid())
	assert.True(t, FrequencyAnnual.IsValid())
	assert.False(t, Frequency("fortnightly").IsValid())
	assert.False(t, Frequency("").IsValid())
}
