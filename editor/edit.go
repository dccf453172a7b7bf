package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"mailflow/utils"
)

// PaletteKind names an entry of the step palette.
type PaletteKind string

const (
	PaletteDelay                 PaletteKind = "delay"
	PaletteSendEmail             PaletteKind = PaletteKind(ActionSendEmail)
	PaletteHTTPRequest           PaletteKind = PaletteKind(ActionHTTPRequest)
	PaletteMoveToList            PaletteKind = PaletteKind(ActionMoveToList)
	PaletteDeleteFromCurrentList PaletteKind = PaletteKind(ActionDeleteFromCurrentList)
	PaletteDeleteSubscriber      PaletteKind = PaletteKind(ActionDeleteSubscriber)
)

// Palette lists the draggable step kinds in display order.
var Palette = []PaletteKind{
	PaletteDelay,
	PaletteSendEmail,
	PaletteHTTPRequest,
	PaletteMoveToList,
	PaletteDeleteFromCurrentList,
	PaletteDeleteSubscriber,
}

// Retry bounds of webhook steps.
const (
	MinRetryAttempts     = 1
	MaxRetryAttempts     = 7
	MinRetryDelaySeconds = 1
	MaxRetryDelaySeconds = 300
)

// Patch is a shallow set of field changes keyed by the JSON field names of
// a step ("title", "amount", "templateId", "retryAttempts", ...).
type Patch map[string]any

// Defaults returns the pre-filled step shown when kind is dropped on the
// canvas. The step has no id yet.
func Defaults(kind PaletteKind) (Step, error) {
	switch kind {
	case PaletteDelay:
		return Step{Title: "Wait", Body: Delay{Amount: 3, Unit: UnitMinutes}}, nil
	case PaletteSendEmail:
		return Step{Title: "Send email", Body: SendEmail{}}, nil
	case PaletteHTTPRequest:
		return Step{Title: "Webhook", Body: HTTPRequest{
			Method:            "GET",
			RetryAttempts:     3,
			RetryDelaySeconds: 60,
		}}, nil
	case PaletteMoveToList:
		return Step{Title: "Move to list", Body: MoveToList{}}, nil
	case PaletteDeleteFromCurrentList:
		return Step{Title: "Remove from list", Body: DeleteFromCurrentList{}}, nil
	case PaletteDeleteSubscriber:
		return Step{Title: "Delete subscriber", Body: DeleteSubscriber{}}, nil
	}
	return Step{}, fmt.Errorf("unknown palette entry %q", kind)
}

// ApplyPatch merges patch into a copy of step. The id and the kind
// discriminants cannot be changed through a patch; a key that names no
// field of the step is an error.
func ApplyPatch(step Step, patch Patch) (Step, error) {
	fields, err := bodyFields(step.Body)
	if err != nil {
		return Step{}, err
	}
	for k, v := range patch {
		switch k {
		case "id", "kind", "actionKind":
			continue
		case "title":
			title, ok := v.(string)
			if !ok {
				return Step{}, fmt.Errorf("title must be a string")
			}
			step.Title = title
		default:
			fields[k] = v
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return Step{}, err
	}
	body, err := newBody(step.Kind(), step.ActionKind())
	if err != nil {
		return Step{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(body); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return Step{}, fmt.Errorf("unknown field %s for %s step", field, describeKind(step))
		}
		return Step{}, fmt.Errorf("invalid field value: %w", err)
	}
	step.Body = normalize(deref(body))
	return step, nil
}

// normalize brings derived and bounded fields into shape.
func normalize(b Body) Body {
	switch v := b.(type) {
	case HTTPRequest:
		v.RetryAttempts = clamp(v.RetryAttempts, MinRetryAttempts, MaxRetryAttempts)
		v.RetryDelaySeconds = clamp(v.RetryDelaySeconds, MinRetryDelaySeconds, MaxRetryDelaySeconds)
		return v
	case SendEmail:
		v.Summary = nil
		if v.HTML != "" {
			v.Summary = SummarizePlaceholders(v.HTML)
		}
		return v
	}
	return b
}

func describeKind(step Step) string {
	if step.Kind() == KindAction {
		return string(step.ActionKind())
	}
	return string(step.Kind())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ValidateStep checks the step body against its field rules.
func ValidateStep(step Step) error {
	if step.Body == nil {
		return fmt.Errorf("step has no body")
	}
	return utils.ValidateStruct(step.Body)
}
