// Package editor implements the editing session behind the admin rich-text
// fields. A Session owns one document for as long as its hosting form is
// open, applies discrete commands to it, and hands the re-serialized HTML
// to the form after every committed change. The form owns persistence.
package editor

import (
	"errors"
	"sync"
	"sync/atomic"

	"fmasite/internal/richtext"
)

var (
	ErrUploadInFlight = errors.New("editor: an image upload is already in progress")
	ErrClosed         = errors.New("editor: session is closed")
)

// ChangeFunc receives the serialized document after every committed edit.
type ChangeFunc func(html string)

type Option func(*Session)

// WithHistoryDepth bounds the undo stack; values <= 0 use DefaultHistoryDepth.
func WithHistoryDepth(depth int) Option {
	return func(s *Session) {
		s.history = newHistory(depth)
	}
}

// Session is safe for use from several goroutines, but commands are meant
// to arrive one at a time from the surface that owns it.
type Session struct {
	mu       sync.Mutex
	doc      *richtext.Document
	sel      richtext.Selection
	stored   *richtext.MarkSet
	history  *history
	onChange ChangeFunc
	closed   bool

	uploading atomic.Bool
}

// New opens a session on persisted content. Empty content starts from a
// single empty paragraph. The cursor starts at the end of the document.
func New(content string, onChange ChangeFunc, opts ...Option) *Session {
	doc := richtext.Deserialize(content)
	end := doc.End()
	s := &Session{
		doc:      doc,
		sel:      richtext.Cursor(end.Block, end.Offset),
		history:  newHistory(DefaultHistoryDepth),
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// command edits doc in place and returns the selection to keep. It reports
// false when nothing changed.
type command func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool)

// mutate runs one top-level command. Only a command that changed the
// document leaves a snapshot behind and announces the new HTML.
func (s *Session) mutate(cmd command) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	before := snapshot{doc: s.doc.Clone(), sel: s.sel}
	sel, ok := cmd(s.doc, s.doc.Clamp(s.sel))
	if !ok {
		s.doc = before.doc
		s.mu.Unlock()
		return false
	}
	s.history.push(before)
	s.stored = nil
	s.sel = s.doc.Clamp(sel)
	html := richtext.Serialize(s.doc)
	s.mu.Unlock()

	s.notify(html)
	return true
}

// can runs cmd against a copy of the document.
func (s *Session) can(cmd command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	_, ok := cmd(s.doc.Clone(), s.doc.Clamp(s.sel))
	return ok
}

func (s *Session) notify(html string) {
	if s.onChange != nil {
		s.onChange(html)
	}
}

// HTML returns the current serialized document.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}
	return richtext.Serialize(s.doc)
}

// Document returns a copy of the current document.
func (s *Session) Document() *richtext.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return richtext.NewEmpty()
	}
	return s.doc.Clone()
}

func (s *Session) Selection() richtext.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Select moves the selection. It never changes the document and never
// notifies. Stored marks survive a selection that lands where the cursor
// already was.
func (s *Session) Select(sel richtext.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sel = s.doc.Clamp(sel)
	if sel != s.sel {
		s.stored = nil
	}
	s.sel = sel
}

// Close discards the document. Every later command is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	s.stored = nil
	s.history.clear()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.canUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.canRedo()
}

// Undo restores the state before the most recent command.
func (s *Session) Undo() bool {
	return s.travel(s.history.undo)
}

// Redo reapplies the most recently undone command.
func (s *Session) Redo() bool {
	return s.travel(s.history.redo)
}

func (s *Session) travel(step func(snapshot) (snapshot, bool)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	target, ok := step(snapshot{doc: s.doc, sel: s.sel})
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc, s.sel, s.stored = target.doc, target.sel, nil
	html := richtext.Serialize(s.doc)
	s.mu.Unlock()

	s.notify(html)
	return true
}

// State is what the toolbar needs to highlight and enable its buttons.
type State struct {
	Bold      bool               `json:"bold"`
	Italic    bool               `json:"italic"`
	Underline bool               `json:"underline"`
	Link      string             `json:"link,omitempty"`
	Block     string             `json:"block"`
	Level     int                `json:"level,omitempty"`
	CanUndo   bool               `json:"can_undo"`
	CanRedo   bool               `json:"can_redo"`
	Selection richtext.Selection `json:"selection"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}
	}
	st := State{
		Bold:      s.markActive(richtext.Bold),
		Italic:    s.markActive(richtext.Italic),
		Underline: s.markActive(richtext.Underline),
		Link:      s.doc.LinkAt(s.sel),
		CanUndo:   s.history.canUndo(),
		CanRedo:   s.history.canRedo(),
		Selection: s.sel,
	}
	if b := s.doc.Blocks[s.sel.From().Block]; s.doc.IsBlockActive(s.sel, b.Type, b.Level) {
		st.Block, st.Level = b.Type.String(), b.Level
	}
	return st
}

// IsMarkActive reports whether t is in effect at the current selection,
// including marks toggled on an empty selection and not yet typed.
func (s *Session) IsMarkActive(t richtext.MarkType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.markActive(t)
}

func (s *Session) markActive(t richtext.MarkType) bool {
	if s.sel.Empty() && s.stored != nil {
		return s.stored.Has(t)
	}
	return s.doc.IsMarkActive(s.sel, t)
}

func (s *Session) IsBlockActive(t richtext.BlockType, level int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.doc.IsBlockActive(s.sel, t, level)
}
