package editor

import "encoding/json"

// Plan is the set of calls needed to turn the server snapshot into the
// current list.
type Plan struct {
	Created []Step
	Updated []Step
	Deleted []Step
}

// Empty reports whether the plan has no create, update or delete.
func (p Plan) Empty() bool {
	return len(p.Created) == 0 && len(p.Updated) == 0 && len(p.Deleted) == 0
}

// Diff compares the server snapshot with the current list. Steps are
// matched by id and compared by their server-shape serialization.
func Diff(original, current []Step) Plan {
	origByID := make(map[string]Step, len(original))
	for _, s := range original {
		origByID[s.ID] = s
	}
	currByID := make(map[string]struct{}, len(current))
	for _, s := range current {
		currByID[s.ID] = struct{}{}
	}

	var plan Plan
	for _, s := range current {
		orig, known := origByID[s.ID]
		if !known || IsTempID(s.ID) {
			plan.Created = append(plan.Created, s)
			continue
		}
		if serverShape(orig) != serverShape(s) {
			plan.Updated = append(plan.Updated, s)
		}
	}
	for _, s := range original {
		if _, ok := currByID[s.ID]; !ok {
			plan.Deleted = append(plan.Deleted, s)
		}
	}
	return plan
}

func serverShape(s Step) string {
	raw, err := json.Marshal(ToServer(s))
	if err != nil {
		return ""
	}
	return string(raw)
}
