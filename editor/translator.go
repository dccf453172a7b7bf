package editor

import (
	"fmt"
	"strings"

	"mailflow/models"
)

// ToServer maps a step to the server record shape. Identity and position
// (ID, FlowID, StepCount) are left for the caller.
func ToServer(step Step) models.StepRecord {
	rec := models.StepRecord{Title: step.Title}
	switch b := step.Body.(type) {
	case Delay:
		rec.StepType = models.StepTypeWait
		rec.WaitDuration = b.Amount
		rec.WaitUnit = string(b.Unit)
	case SendEmail:
		rec.StepType = models.StepTypeSendMail
		rec.SendMailTemplate = b.TemplateID
		rec.SendMailSubject = b.Subject
		rec.SendMailHTML = b.HTML
	case HTTPRequest:
		rec.StepType = models.StepTypeWebhook
		rec.RequestMethod = b.Method
		rec.WebhookURL = b.URL
		rec.QueryParams = ToQueryParamsArray(b.Query)
		if len(b.Headers) > 0 {
			rec.Headers = make(map[string]string, len(b.Headers))
			for k, v := range b.Headers {
				rec.Headers[k] = v
			}
		}
		rec.RequestBody = b.Body
		rec.RetryAttempts = b.RetryAttempts
		rec.RetryAfterSeconds = b.RetryDelaySeconds
	case MoveToList:
		rec.StepType = models.StepTypeMoveSubscriber
		rec.TargetListID = b.TargetListID
	case DeleteFromCurrentList:
		rec.StepType = models.StepTypeRemoveSubscriber
	case DeleteSubscriber:
		rec.StepType = models.StepTypeDeleteSubscriber
		rec.DeleteReason = b.Reason
	}
	return rec
}

// FromServer maps a server record back to a step. Records with a step type
// the editor does not know yield ErrUnknownStepType.
func FromServer(rec models.StepRecord) (Step, error) {
	step := Step{ID: rec.ID, Title: rec.Title}
	switch rec.StepType {
	case models.StepTypeWait:
		step.Body = Delay{Amount: rec.WaitDuration, Unit: TimeUnit(rec.WaitUnit)}
	case models.StepTypeSendMail:
		body := SendEmail{
			TemplateID: rec.SendMailTemplate,
			Subject:    rec.SendMailSubject,
			HTML:       rec.SendMailHTML,
		}
		if body.HTML != "" {
			body.Summary = SummarizePlaceholders(body.HTML)
		}
		step.Body = body
	case models.StepTypeWebhook:
		body := HTTPRequest{
			Method:            rec.RequestMethod,
			URL:               rec.WebhookURL,
			Query:             fromQueryParamsArray(rec.QueryParams),
			Body:              rec.RequestBody,
			RetryAttempts:     rec.RetryAttempts,
			RetryDelaySeconds: rec.RetryAfterSeconds,
		}
		if len(rec.Headers) > 0 {
			body.Headers = make(map[string]string, len(rec.Headers))
			for k, v := range rec.Headers {
				body.Headers[k] = v
			}
		}
		step.Body = body
	case models.StepTypeMoveSubscriber:
		step.Body = MoveToList{TargetListID: rec.TargetListID}
	case models.StepTypeRemoveSubscriber:
		step.Body = DeleteFromCurrentList{}
	case models.StepTypeDeleteSubscriber:
		step.Body = DeleteSubscriber{Reason: rec.DeleteReason}
	default:
		return Step{}, fmt.Errorf("%w %q (step %s)", ErrUnknownStepType, rec.StepType, rec.ID)
	}
	return step, nil
}

// ToQueryParamsArray splits a raw "k=v&k2=v2" string into static query
// parameters. Only the first "=" of a pair separates key from value. Every
// segment is kept, empty ones included, so fromQueryParamsArray gives the
// input back unchanged.
func ToQueryParamsArray(raw string) []models.QueryParam {
	params := []models.QueryParam{}
	if strings.TrimSpace(raw) == "" {
		return params
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, hasValue := strings.Cut(pair, "=")
		params = append(params, models.QueryParam{Key: key, Value: value, Type: "static", Bare: !hasValue})
	}
	return params
}

func fromQueryParamsArray(params []models.QueryParam) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		if p.Bare && p.Value == "" {
			pairs = append(pairs, p.Key)
			continue
		}
		pairs = append(pairs, p.Key+"="+p.Value)
	}
	return strings.Join(pairs, "&")
}
