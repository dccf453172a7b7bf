package editor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailflow/models"
)

func sampleSteps() []Step {
	return []Step{
		{ID: "s1", Title: "Wait", Body: Delay{Amount: 1.5, Unit: UnitHours}},
		{ID: "s2", Title: "Welcome", Body: SendEmail{
			TemplateID: "tpl-1",
			Subject:    "Hi {{first_name}}",
			HTML:       "<p>Hello {{ first_name }}, see {{ shop.url }}</p>",
		}},
		{ID: "s3", Title: "CRM", Body: HTTPRequest{
			Method:            "POST",
			URL:               "https://crm.example.com/hook",
			Query:             "source=mail&token=a=b",
			Headers:           map[string]string{"X-Token": "abc"},
			Body:              `{"email":"{{email}}"}`,
			RetryAttempts:     4,
			RetryDelaySeconds: 90,
		}},
		{ID: "s4", Title: "Move", Body: MoveToList{TargetListID: "list-2"}},
		{ID: "s5", Title: "Remove", Body: DeleteFromCurrentList{}},
		{ID: "s6", Title: "Delete", Body: DeleteSubscriber{Reason: "unsubscribed"}},
	}
}

func TestTranslatorRoundTrip(t *testing.T) {
	for _, step := range sampleSteps() {
		t.Run(step.Title, func(t *testing.T) {
			rec := ToServer(step)
			rec.ID = step.ID

			back, err := FromServer(rec)
			require.NoError(t, err)
			assert.Equal(t, canonical([]Step{step}), canonical([]Step{back}))
			assert.Equal(t, step.Kind(), back.Kind())
			assert.Equal(t, step.ActionKind(), back.ActionKind())
		})
	}
}

func TestToServerStepTypes(t *testing.T) {
	want := []models.StepType{
		models.StepTypeWait,
		models.StepTypeSendMail,
		models.StepTypeWebhook,
		models.StepTypeMoveSubscriber,
		models.StepTypeRemoveSubscriber,
		models.StepTypeDeleteSubscriber,
	}
	for i, step := range sampleSteps() {
		assert.Equal(t, want[i], ToServer(step).StepType, step.Title)
	}
}

func TestToServerWebhookFields(t *testing.T) {
	rec := ToServer(sampleSteps()[2])

	assert.Equal(t, "https://crm.example.com/hook", rec.WebhookURL)
	assert.Equal(t, "POST", rec.RequestMethod)
	assert.Equal(t, 4, rec.RetryAttempts)
	assert.Equal(t, 90, rec.RetryAfterSeconds)
	assert.Equal(t, []models.QueryParam{
		{Key: "source", Value: "mail", Type: "static"},
		{Key: "token", Value: "a=b", Type: "static"},
	}, rec.QueryParams)
}

func TestFromServerUnknownStepType(t *testing.T) {
	_, err := FromServer(models.StepRecord{ID: "x", StepType: "sendSms"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStepType)
	assert.Contains(t, err.Error(), "sendSms")
}

func TestFromServerComputesPlaceholderSummary(t *testing.T) {
	step, err := FromServer(models.StepRecord{
		StepType:     models.StepTypeSendMail,
		SendMailHTML: "{{b}} {{a}} {{ b }}",
	})
	require.NoError(t, err)
	body := step.Body.(SendEmail)
	require.NotNil(t, body.Summary)
	assert.Equal(t, []string{"a", "b"}, body.Summary.Tokens)
}

func TestToQueryParamsArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []models.QueryParam
	}{
		{name: "empty", raw: "", want: []models.QueryParam{}},
		{name: "whitespace", raw: "   ", want: []models.QueryParam{}},
		{name: "pairs", raw: "a=1&b=2", want: []models.QueryParam{
			{Key: "a", Value: "1", Type: "static"},
			{Key: "b", Value: "2", Type: "static"},
		}},
		{name: "value keeps equals", raw: "sig=x=y==", want: []models.QueryParam{
			{Key: "sig", Value: "x=y==", Type: "static"},
		}},
		{name: "key without value", raw: "flag", want: []models.QueryParam{
			{Key: "flag", Value: "", Type: "static", Bare: true},
		}},
		{name: "key with empty value", raw: "flag=", want: []models.QueryParam{
			{Key: "flag", Value: "", Type: "static"},
		}},
		{name: "empty segments kept", raw: "&=v&a=1&", want: []models.QueryParam{
			{Key: "", Value: "", Type: "static", Bare: true},
			{Key: "", Value: "v", Type: "static"},
			{Key: "a", Value: "1", Type: "static"},
			{Key: "", Value: "", Type: "static", Bare: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToQueryParamsArray(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryStringRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"a=1&b=2",
		"flag",
		"flag=",
		"=x&b=2",
		"a=1&&b=2",
		"&",
		" a = 1 ",
		"sig=x=y==&flag&c=",
	} {
		step := Step{ID: "w", Title: "Hook", Body: HTTPRequest{
			Method:            "GET",
			URL:               "https://hooks.example.com",
			Query:             raw,
			RetryAttempts:     1,
			RetryDelaySeconds: 1,
		}}
		back, err := FromServer(withID(ToServer(step), "w"))
		require.NoError(t, err, raw)
		assert.Equal(t, raw, back.Body.(HTTPRequest).Query, raw)
	}
}

func withID(rec models.StepRecord, id string) models.StepRecord {
	rec.ID = id
	return rec
}

func TestStepJSONIsFlat(t *testing.T) {
	raw, err := json.Marshal(sampleSteps()[1])
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "s2", fields["id"])
	assert.Equal(t, "action", fields["kind"])
	assert.Equal(t, "send_email", fields["actionKind"])
	assert.Equal(t, "tpl-1", fields["templateId"])
	assert.NotContains(t, fields, "summary")
	assert.NotContains(t, fields, "Summary")

	var back Step
	require.NoError(t, json.Unmarshal(raw, &back))
	body := back.Body.(SendEmail)
	require.NotNil(t, body.Summary)
	assert.Equal(t, []string{"first_name", "shop.url"}, body.Summary.Tokens)
}

func TestDelayJSONHasNoActionKind(t *testing.T) {
	raw, err := json.Marshal(sampleSteps()[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "actionKind")
}

func TestStepUnmarshalRejectsUnknownKind(t *testing.T) {
	var s Step
	err := json.Unmarshal([]byte(`{"id":"x","kind":"action","actionKind":"send_sms"}`), &s)
	assert.Error(t, err)
}

func TestTempIDs(t *testing.T) {
	id := NewTempID()
	assert.True(t, IsTempID(id))
	assert.NotEqual(t, id, NewTempID())
	assert.False(t, IsTempID("6650c1f0"))
}
