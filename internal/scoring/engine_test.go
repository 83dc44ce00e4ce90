package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// fixtureTemplate is the reference template from the end-to-end scenarios:
// one boolean, one ranged number, one select with an unacceptable option,
// one textarea.
func fixtureTemplate() *model.ChecklistTemplate {
	return &model.ChecklistTemplate{
		ID:            "tpl-test",
		EquipmentType: "compressor",
		Title:         "Test template",
		Version:       "1.0",
		Frequency:     model.FrequencyWeekly,
		Sections: []model.Section{
			{
				Name: "Checks",
				Items: []model.Item{
					{ID: "b1", Type: model.ItemBoolean, Check: "Switch works", Rule: model.BooleanRule{}},
					{ID: "n1", Type: model.ItemNumber, Check: "Pressure", Rule: model.NumberRule{Range: &model.NumberRange{Min: 10, Max: 20}}},
					{ID: "s1", Type: model.ItemSelect, Check: "Condition", Rule: model.SelectRule{Options: []model.SelectOption{
						{Value: "good", Label: "Good", Acceptable: true},
						{Value: "worn", Label: "Worn", Acceptable: false},
					}}},
					{ID: "t1", Type: model.ItemTextarea, Check: "Notes", Rule: model.TextareaRule{}},
				},
			},
		},
	}
}

var refInstant = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestScoreAllPassing(t *testing.T) {
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 15.0},
		"s1": {Value: "good"},
		"t1": {Value: "ok"},
	}

	res, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalItems)
	assert.Equal(t, 4, res.CompletedItems)
	assert.Equal(t, 4, res.PassedItems)
	assert.Equal(t, 0, res.FailedItems)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, model.FinalConforme, res.FinalStatus)
}

func TestScoreHalfFailing(t *testing.T) {
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 25.0},   // out of range
		"s1": {Value: "worn"}, // unacceptable
		"t1": {Value: "ok"},
	}

	res, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 2, res.PassedItems)
	assert.Equal(t, 2, res.FailedItems)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, model.FinalCritique, res.FinalStatus)
}

func TestScoreUnansweredExcluded(t *testing.T) {
	tpl := fixtureTemplate()
	tpl.Sections[0].Items = append(tpl.Sections[0].Items,
		model.Item{ID: "f1", Type: model.ItemFile, Check: "Photo", Rule: model.FileRule{}})

	// Only two of five items answered, both passing: the score reflects
	// answered items only.
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 12.0},
	}

	res, err := New().Score(tpl, responses, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalItems)
	assert.Equal(t, 2, res.CompletedItems)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, model.FinalConforme, res.FinalStatus)
}

func TestScoreEmptyResponses(t *testing.T) {
	res, err := New().Score(fixtureTemplate(), model.ResponseSet{}, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 0, res.CompletedItems)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, model.FinalEnAttente, res.FinalStatus)
}

func TestScoreDeterministic(t *testing.T) {
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 11.0},
		"s1": {Value: "worn"},
	}

	first, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)
	second, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScoreConservation(t *testing.T) {
	cases := []model.ResponseSet{
		{},
		{"b1": {Value: true}},
		{"b1": {Value: false}, "n1": {Value: 5.0}},
		{"b1": {Value: true}, "n1": {Value: 15.0}, "s1": {Value: "good"}, "t1": {Value: "x"}},
		{"s1": {Value: "unknown-value"}},
	}
	for _, responses := range cases {
		res, err := New().Score(fixtureTemplate(), responses, refInstant)
		require.NoError(t, err)
		assert.Equal(t, res.CompletedItems, res.PassedItems+res.FailedItems)
		assert.LessOrEqual(t, res.CompletedItems, res.TotalItems)
	}
}

func TestScoreRounding(t *testing.T) {
	// Two passes out of three answered: 66.666... rounds half-up to 66.7.
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 15.0},
		"s1": {Value: "worn"},
	}
	res, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)
	assert.Equal(t, 66.7, res.Score)
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  model.FinalStatus
	}{
		{100, model.FinalConforme},
		{90.0, model.FinalConforme},
		{89.9, model.FinalAVerifier},
		{75.0, model.FinalAVerifier},
		{74.9, model.FinalCritique},
		{50.0, model.FinalCritique},
		{49.9, model.FinalEnAttente},
		{0, model.FinalEnAttente},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, Classify(tc.score), "score %.1f", tc.score)
	}
}

func TestNumberWithoutRangeAlwaysPasses(t *testing.T) {
	tpl := &model.ChecklistTemplate{
		ID:       "tpl-norange",
		Version:  "1.0",
		Sections: []model.Section{{Name: "S", Items: []model.Item{
			{ID: "n1", Type: model.ItemNumber, Check: "Reading", Rule: model.NumberRule{}},
		}}},
	}
	res, err := New().Score(tpl, model.ResponseSet{"n1": {Value: -9999.0}}, refInstant)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PassedItems)
}

func TestSelectUnknownValueFailsWithoutError(t *testing.T) {
	responses := model.ResponseSet{"s1": {Value: "legacy-value"}}
	res, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FailedItems)
	assert.Equal(t, 0, res.PassedItems)
}

func TestInvalidNumberResponseStrict(t *testing.T) {
	responses := model.ResponseSet{"n1": {Value: "not a number"}}

	_, err := New().Score(fixtureTemplate(), responses, refInstant)
	require.Error(t, err)

	var respErr *InvalidResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "n1", respErr.ItemID)
	assert.Equal(t, model.ItemNumber, respErr.ItemType)
}

func TestInvalidBooleanResponseStrict(t *testing.T) {
	responses := model.ResponseSet{"b1": {Value: "true"}}

	_, err := New().Score(fixtureTemplate(), responses, refInstant)

	var respErr *InvalidResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "b1", respErr.ItemID)
}

func TestInvalidResponseLenientDowngradesToUnanswered(t *testing.T) {
	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: "not a number"},
	}

	res, err := NewWithPolicy(PolicyLenient).Score(fixtureTemplate(), responses, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 1, res.CompletedItems)
	assert.Equal(t, 1, res.PassedItems)
	assert.Equal(t, 100.0, res.Score)
}

func TestLenientOnlyDowngradesResponseErrors(t *testing.T) {
	tpl := fixtureTemplate()
	// A pointer rule satisfies the interface but matches none of the value
	// variants the evaluator switches over.
	tpl.Sections[0].Items[0].Rule = &model.BooleanRule{}

	responses := model.ResponseSet{
		"b1": {Value: true},
		"n1": {Value: 15.0},
	}

	var tplErr *InvalidTemplateError

	_, err := NewWithPolicy(PolicyLenient).Score(tpl, responses, refInstant)
	require.ErrorAs(t, err, &tplErr)

	_, err = New().Score(tpl, responses, refInstant)
	require.ErrorAs(t, err, &tplErr)
}

func TestValidateTemplate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.ChecklistTemplate)
	}{
		{"no sections", func(tpl *model.ChecklistTemplate) { tpl.Sections = nil }},
		{"empty section", func(tpl *model.ChecklistTemplate) {
			tpl.Sections = append(tpl.Sections, model.Section{Name: "Empty"})
		}},
		{"duplicate item id", func(tpl *model.ChecklistTemplate) {
			tpl.Sections[0].Items = append(tpl.Sections[0].Items,
				model.Item{ID: "b1", Type: model.ItemBoolean, Rule: model.BooleanRule{}})
		}},
		{"empty item id", func(tpl *model.ChecklistTemplate) {
			tpl.Sections[0].Items[0].ID = ""
		}},
		{"unknown item type", func(tpl *model.ChecklistTemplate) {
			tpl.Sections[0].Items[0].Rule = nil
			tpl.Sections[0].Items[0].Type = "signature"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := fixtureTemplate()
			tc.mutate(tpl)

			_, err := New().Score(tpl, model.ResponseSet{}, refInstant)

			var tplErr *InvalidTemplateError
			require.ErrorAs(t, err, &tplErr)
		})
	}
}

func TestInvalidTemplateStopsBeforeEvaluation(t *testing.T) {
	tpl := fixtureTemplate()
	tpl.Sections = nil

	res, err := New().Score(tpl, model.ResponseSet{"b1": {Value: true}}, refInstant)
	assert.Nil(t, res)
	assert.True(t, errors.As(err, new(*InvalidTemplateError)))
}
