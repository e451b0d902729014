package editor

import "fmasite/internal/richtext"

// DefaultHistoryDepth matches the undo depth of the admin editor.
const DefaultHistoryDepth = 100

// snapshot is the state before a command: the document and the selection
// to restore on undo.
type snapshot struct {
	doc *richtext.Document
	sel richtext.Selection
}

// history is the undo/redo pair of stacks. It is owned by one Session and
// relies on the session lock.
type history struct {
	undoStack []snapshot
	redoStack []snapshot
	depth     int
}

func newHistory(depth int) *history {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &history{depth: depth}
}

// push records the state before a new command and clears the redo stack.
func (h *history) push(s snapshot) {
	h.undoStack = append(h.undoStack, s)
	h.redoStack = nil

	if len(h.undoStack) > h.depth {
		excess := len(h.undoStack) - h.depth
		h.undoStack = h.undoStack[excess:]
	}
}

// undo pops the latest snapshot and saves current for redo.
func (h *history) undo(current snapshot) (snapshot, bool) {
	if len(h.undoStack) == 0 {
		return snapshot{}, false
	}
	prev := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return prev, true
}

func (h *history) redo(current snapshot) (snapshot, bool) {
	if len(h.redoStack) == 0 {
		return snapshot{}, false
	}
	next := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return next, true
}

func (h *history) canUndo() bool { return len(h.undoStack) > 0 }
func (h *history) canRedo() bool { return len(h.redoStack) > 0 }

func (h *history) clear() {
	h.undoStack = nil
	h.redoStack = nil
}
