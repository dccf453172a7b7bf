package editor

import "time"

// Direction tells which way a step is dragged.
type Direction int

const (
	Up Direction = iota
	Down
)

// DirectionOf derives the drag direction from the two indexes.
func DirectionOf(from, target int) Direction {
	if from > target {
		return Up
	}
	return Down
}

// HistoryEntry records one applied reorder.
type HistoryEntry struct {
	Type      string    `json:"type"`
	FromIndex int       `json:"fromIndex"`
	ToIndex   int       `json:"toIndex"`
	StepID    string    `json:"stepId"`
	Timestamp time.Time `json:"timestamp"`
}

// Reorder moves list[from] next to list[target]. Dragging up inserts it
// before the target, dragging down inserts it after the target's original
// position. It returns the new list, the final index of the moved step and
// false when the move would not change anything. The input is not modified.
func Reorder(list []Step, from, target int, dir Direction) ([]Step, int, bool) {
	if from < 0 || from >= len(list) || target < 0 || target >= len(list) || from == target {
		return list, from, false
	}
	dragged := list[from]
	targetID := list[target].ID

	rest := make([]Step, 0, len(list)-1)
	rest = append(rest, list[:from]...)
	rest = append(rest, list[from+1:]...)

	at := -1
	for i, s := range rest {
		if s.ID == targetID {
			at = i
			break
		}
	}
	if at < 0 {
		// Duplicate ids; fall back to the positional target.
		at = target
		if from < target {
			at = target - 1
		}
	}
	if dir == Down {
		at++
	}
	if at > len(rest) {
		at = len(rest)
	}
	if at == from {
		return list, from, false
	}
	if at < len(rest) && rest[at].ID == dragged.ID {
		return list, from, false
	}

	out := make([]Step, 0, len(list))
	out = append(out, rest[:at]...)
	out = append(out, dragged)
	out = append(out, rest[at:]...)
	return out, at, true
}
