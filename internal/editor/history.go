package editor

import "slices"

// DefaultHistoryLimit is the number of past snapshots kept when History.Limit is unset.
const DefaultHistoryLimit = 50

// History wraps the current model with bounded undo and redo stacks.
//
// History is a value: Dispatch, Undo and Redo return a new History and never
// modify the receiver or share stack storage with it.
type History struct {
	Current Model
	// Past holds snapshots oldest first; the last entry is restored by Undo.
	Past []Snapshot
	// Future holds snapshots nearest first; the first entry is restored by Redo.
	Future []Snapshot
	// Limit caps len(Past). Zero means DefaultHistoryLimit.
	Limit int
}

// NewHistory returns a History with empty stacks around m.
func NewHistory(m Model, limit int) History {
	return History{Current: m, Limit: limit}
}

func (h History) limit() int {
	if h.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return h.Limit
}

// CanUndo reports whether Undo would change the model.
func (h History) CanUndo() bool { return len(h.Past) > 0 }

// CanRedo reports whether Redo would change the model.
func (h History) CanRedo() bool { return len(h.Future) > 0 }

// push returns past with s appended and the oldest entries dropped beyond limit.
func push(past []Snapshot, s Snapshot, limit int) []Snapshot {
	next := append(slices.Clone(past), s)
	if over := len(next) - limit; over > 0 {
		next = next[over:]
	}
	return next
}

// Dispatch applies a through r and records the transition according to the
// action kind.
//
// Reset actions clear both stacks. View actions leave the stacks untouched.
// Undoable actions push the prior snapshot onto Past and clear Future, but
// only when the undoable state actually changed. Undo and Redo navigate the
// stacks.
//
// Postcondition: Returns (next, true) if the action was accepted, or (h, false).
func (h History) Dispatch(r *Reducer, a Action) (History, bool) {
	switch a.Kind() {
	case KindControl:
		switch a.(type) {
		case Undo:
			return h.Undo()
		case Redo:
			return h.Redo()
		}
		return h, false
	case KindReset:
		next, ok := r.Apply(h.Current, a)
		if !ok {
			return h, false
		}
		return History{Current: next, Limit: h.Limit}, true
	case KindView:
		next, ok := r.Apply(h.Current, a)
		if !ok {
			return h, false
		}
		h.Current = next
		return h, true
	case KindUndoable:
		before := h.Current.Snapshot()
		next, ok := r.Apply(h.Current, a)
		if !ok {
			return h, false
		}
		if before.Equal(next.Snapshot()) {
			h.Current = next
			return h, false
		}
		return History{
			Current: next,
			Past:    push(h.Past, before, h.limit()),
			Limit:   h.Limit,
		}, true
	default:
		return h, false
	}
}

// Undo restores the most recent past snapshot and clears the selection.
//
// Postcondition: Returns (h, false) when Past is empty.
func (h History) Undo() (History, bool) {
	if len(h.Past) == 0 {
		return h, false
	}
	last := len(h.Past) - 1
	prev := h.Past[last]
	future := append([]Snapshot{h.Current.Snapshot()}, h.Future...)
	return History{
		Current: h.Current.Restore(prev),
		Past:    slices.Clone(h.Past[:last]),
		Future:  future,
		Limit:   h.Limit,
	}, true
}

// Redo restores the most recent future snapshot and clears the selection.
//
// Postcondition: Returns (h, false) when Future is empty.
func (h History) Redo() (History, bool) {
	if len(h.Future) == 0 {
		return h, false
	}
	next := h.Future[0]
	return History{
		Current: h.Current.Restore(next),
		Past:    push(h.Past, h.Current.Snapshot(), h.limit()),
		Future:  slices.Clone(h.Future[1:]),
		Limit:   h.Limit,
	}, true
}
