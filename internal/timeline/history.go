package timeline

// one applied edit, stored as a pair of replay closures so a step costs
// O(1) memory regardless of timeline size
type entry struct {
	undo func()
	redo func()
}

// linear operation log with a cursor; entries past the cursor form the
// redo tail
type history struct {
	entries []entry
	cursor  int
}

func (h *history) record(undo, redo func()) {
	// a new edit after an undo discards the redo tail
	h.entries = h.entries[:h.cursor]
	h.entries = append(h.entries, entry{undo: undo, redo: redo})
	h.cursor = len(h.entries)
}

func (h *history) undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.entries[h.cursor].undo()
	return true
}

func (h *history) redo() bool {
	if h.cursor >= len(h.entries) {
		return false
	}
	h.entries[h.cursor].redo()
	h.cursor++
	return true
}

func (h *history) reset() {
	h.entries = nil
	h.cursor = 0
}
