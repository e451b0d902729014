package editor

import (
	"strings"

	"fmasite/internal/richtext"
)

// ToggleMark removes t from the selection when every selected character
// already carries it and applies it everywhere otherwise. On a collapsed
// selection it only flips the marks the next typed text will take.
func (s *Session) ToggleMark(t richtext.MarkType) bool {
	if t == richtext.Link {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if sel := s.doc.Clamp(s.sel); sel.Empty() {
		cur := s.doc.MarksAt(sel.Head)
		if s.stored != nil {
			cur = *s.stored
		}
		next := cur.With(t, !cur.Has(t))
		s.stored = &next
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	return s.mutate(toggleMark(t))
}

func (s *Session) CanToggleMark(t richtext.MarkType) bool {
	if t == richtext.Link {
		return false
	}
	if s.Selection().Empty() {
		return !s.Closed()
	}
	return s.can(toggleMark(t))
}

func toggleMark(t richtext.MarkType) command {
	return func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		on := !doc.IsMarkActive(sel, t)
		ok := doc.ApplyMarks(sel.From(), sel.To(), func(m richtext.MarkSet) richtext.MarkSet {
			return m.With(t, on)
		})
		return sel, ok
	}
}

// SetBlockType retags every text block the selection touches.
func (s *Session) SetBlockType(t richtext.BlockType, level int) bool {
	return s.mutate(setBlockType(t, level))
}

func (s *Session) CanSetBlockType(t richtext.BlockType, level int) bool {
	return s.can(setBlockType(t, level))
}

func setBlockType(t richtext.BlockType, level int) command {
	return func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		return sel, doc.SetBlockType(sel.From().Block, sel.To().Block, t, level)
	}
}

// ToggleBlockType behaves like the toolbar buttons: pressing the active
// type again turns the blocks back into paragraphs.
func (s *Session) ToggleBlockType(t richtext.BlockType, level int) bool {
	return s.mutate(func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		if doc.IsBlockActive(sel, t, level) {
			return setBlockType(richtext.Paragraph, 0)(doc, sel)
		}
		return setBlockType(t, level)(doc, sel)
	})
}

// SetLink links the selected text to href, replacing any previous target.
// An empty href or an empty selection leaves the document alone.
func (s *Session) SetLink(href string) bool {
	return s.mutate(setLink(href))
}

func (s *Session) CanSetLink(href string) bool {
	return s.can(setLink(href))
}

func setLink(href string) command {
	href = strings.TrimSpace(href)
	return func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		if href == "" || sel.Empty() {
			return sel, false
		}
		ok := doc.ApplyMarks(sel.From(), sel.To(), func(m richtext.MarkSet) richtext.MarkSet {
			return m.WithLink(href)
		})
		return sel, ok
	}
}

// UnsetLink removes links from the selection, or from the whole link
// around a collapsed cursor.
func (s *Session) UnsetLink() bool {
	return s.mutate(func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		from, to := sel.From(), sel.To()
		if sel.Empty() {
			var ok bool
			if from, to, ok = doc.LinkRange(sel.Head); !ok {
				return sel, false
			}
		}
		ok := doc.ApplyMarks(from, to, func(m richtext.MarkSet) richtext.MarkSet {
			return m.With(richtext.Link, false)
		})
		return sel, ok
	})
}

// InsertImage places an image block at the end of the selection:
//
//   - at the end of a block (an empty one included) it goes after the block,
//   - at the start of a non-empty block it goes before it,
//   - anywhere else the block is split around the image.
//
// The cursor lands at the start of the following block, or on the image
// when the image is last.
func (s *Session) InsertImage(src string) bool {
	return s.mutate(insertImage(src))
}

func (s *Session) CanInsertImage(src string) bool {
	return s.can(insertImage(src))
}

func insertImage(src string) command {
	src = strings.TrimSpace(src)
	return func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		if src == "" {
			return sel, false
		}
		p := sel.To()
		b := doc.Blocks[p.Block]

		at := p.Block + 1
		switch {
		case !b.IsText(), p.Offset >= b.Len():
		case p.Offset == 0:
			at = p.Block
		default:
			doc.SplitBlock(p)
		}
		doc.InsertBlock(at, richtext.Block{Type: richtext.Image, Src: src})

		if at+1 < len(doc.Blocks) {
			return richtext.Cursor(at+1, 0), true
		}
		return richtext.Cursor(at, 0), true
	}
}

// InsertText replaces the selection with text. The text takes the stored
// marks if any, otherwise the marks before the cursor. A link is not
// extended past its end.
func (s *Session) InsertText(text string) bool {
	return s.mutate(func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		if text == "" {
			return sel, false
		}
		p := doc.DeleteRange(sel.From(), sel.To())
		if !doc.Blocks[p.Block].IsText() {
			doc.InsertBlock(p.Block+1, richtext.Block{Type: richtext.Paragraph})
			p = richtext.Position{Block: p.Block + 1}
		}

		var marks richtext.MarkSet
		if s.stored != nil {
			marks = *s.stored
		} else {
			marks = doc.MarksAt(p)
			if marks.Href != "" && (p.Offset == 0 || doc.MarksAfter(p).Href != marks.Href) {
				marks = marks.With(richtext.Link, false)
			}
		}
		end := doc.InsertText(p, text, marks)
		return richtext.Cursor(end.Block, end.Offset), true
	})
}

// SplitBlock is the Enter key. An empty list item or quote paragraph turns
// into a plain paragraph instead of splitting, and a heading split at its
// end continues with a paragraph.
func (s *Session) SplitBlock() bool {
	return s.mutate(func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		p := doc.DeleteRange(sel.From(), sel.To())
		b := doc.Blocks[p.Block]

		switch {
		case !b.IsText():
			doc.InsertBlock(p.Block+1, richtext.Block{Type: richtext.Paragraph})
			return richtext.Cursor(p.Block+1, 0), true
		case b.Len() == 0 && lifts(b.Type):
			doc.SetBlockType(p.Block, p.Block, richtext.Paragraph, 0)
			return richtext.Cursor(p.Block, 0), true
		}

		next := doc.SplitBlock(p)
		if b.Type == richtext.Heading && doc.Blocks[next.Block].Len() == 0 {
			doc.SetBlockType(next.Block, next.Block, richtext.Paragraph, 0)
		}
		return richtext.Cursor(next.Block, 0), true
	})
}

func lifts(t richtext.BlockType) bool {
	return t == richtext.BulletList || t == richtext.OrderedList || t == richtext.Blockquote
}

// DeleteBackward is the Backspace key.
func (s *Session) DeleteBackward() bool {
	return s.mutate(func(doc *richtext.Document, sel richtext.Selection) (richtext.Selection, bool) {
		if !sel.Empty() {
			p := doc.DeleteRange(sel.From(), sel.To())
			return richtext.Cursor(p.Block, p.Offset), true
		}

		p := sel.Head
		b := doc.Blocks[p.Block]
		switch {
		case !b.IsText():
			doc.RemoveBlock(p.Block)
			if p.Block == 0 {
				return richtext.Cursor(0, 0), true
			}
			return richtext.Cursor(p.Block-1, doc.Blocks[p.Block-1].Len()), true
		case p.Offset > 0:
			at := doc.DeleteRange(richtext.Position{Block: p.Block, Offset: p.Offset - 1}, p)
			return richtext.Cursor(at.Block, at.Offset), true
		case lifts(b.Type):
			doc.SetBlockType(p.Block, p.Block, richtext.Paragraph, 0)
			return sel, true
		case p.Block == 0:
			return sel, false
		case !doc.Blocks[p.Block-1].IsText():
			doc.RemoveBlock(p.Block - 1)
			return richtext.Cursor(p.Block-1, 0), true
		}
		at := doc.JoinWithPrevious(p.Block)
		return richtext.Cursor(at.Block, at.Offset), true
	})
}
